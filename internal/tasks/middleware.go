package tasks

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

const contextKey = "celerix.background_tasks"

// Middleware gives each request a Queue. Once the handler returns, the queue
// is flushed to r when the response succeeded and discarded otherwise.
func Middleware(r *Runner) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := &Queue{}
		c.Set(contextKey, q)

		c.Next()

		if c.IsAborted() || c.Writer.Status() >= http.StatusBadRequest {
			if q.Len() > 0 {
				log.Printf("Dropping background tasks %v after status %d", q.Names(), c.Writer.Status())
			}
			q.Discard()
			return
		}
		q.Flush(r)
	}
}

// FromContext returns the request's Queue. Outside of Middleware it returns
// a detached queue whose tasks are never run.
func FromContext(c *gin.Context) *Queue {
	if v, ok := c.Get(contextKey); ok {
		if q, ok := v.(*Queue); ok {
			return q
		}
	}
	return &Queue{}
}
