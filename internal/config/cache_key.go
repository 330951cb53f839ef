package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// TeacherSessionKey returns the cache key for a teacher's active session.
func (r *CacheKeyStruct) TeacherSessionKey(classCode string) string {
	return fmt.Sprintf("teacher_login:%s", classCode)
}

var CacheKey = NewCacheKeyStruct()
