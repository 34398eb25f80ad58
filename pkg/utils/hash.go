package utils

import (
	"crypto/md5"
	"fmt"
	"strings"
)

func HashString(input string) string {
	hash := md5.Sum([]byte(input))
	return fmt.Sprintf("%x", hash)
}

// HashQuery normalizes a query before hashing so cache keys ignore case and
// surrounding whitespace.
func HashQuery(query string) string {
	return HashString(strings.ToLower(strings.TrimSpace(query)))
}
