package ibge

import (
	"log"
	"time"
)

// LogRequest logs an upstream API request being made.
func LogRequest(source, method, url string) {
	log.Printf("[%s] %s %s", source, method, url)
}

// LogResponse logs an upstream API response received.
func LogResponse(source string, statusCode int, duration time.Duration, resultCount int) {
	log.Printf("[%s] response status=%d duration=%dms results=%d",
		source, statusCode, duration.Milliseconds(), resultCount)
}

// LogError logs an error from an upstream API operation.
func LogError(source, operation string, err error) {
	log.Printf("[%s] %s error: %v", source, operation, err)
}

// LogSkip logs a malformed entry being skipped during a bulk fetch.
func LogSkip(source, id string, reason string) {
	log.Printf("[%s] skipping malformed entry id=%q: %s", source, id, reason)
}
