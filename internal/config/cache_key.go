package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// CertificateKey returns the cache key for an archived certificate
func (r *CacheKeyStruct) CertificateKey(serial string) string {
	return fmt.Sprintf("certificate:%s", serial)
}

var CacheKey = NewCacheKeyStruct()
