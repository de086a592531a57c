package middleware

import (
	"io"

	"hotel-recommender/internal/logger"
	"hotel-recommender/utils"

	"github.com/gin-gonic/gin"
)

type compressWriter struct {
	gin.ResponseWriter
	algorithm utils.CompressionAlgorithm
	encoder   io.WriteCloser
}

func (w *compressWriter) Write(p []byte) (int, error) {
	if w.encoder == nil {
		if w.Header().Get("Content-Encoding") != "" {
			return w.ResponseWriter.Write(p)
		}
		encoder, err := utils.NewCompressWriter(w.ResponseWriter, w.algorithm)
		if err != nil {
			return 0, err
		}
		w.Header().Del("Content-Length")
		w.Header().Set("Content-Encoding", string(w.algorithm))
		w.encoder = encoder
	}
	return w.encoder.Write(p)
}

func (w *compressWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

func (w *compressWriter) close() error {
	if w.encoder == nil {
		return nil
	}
	return w.encoder.Close()
}

// CompressionMiddleware encodes response bodies with brotli or gzip,
// whichever the client accepts first in that order.
func CompressionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Vary", "Accept-Encoding")

		algorithm := utils.NegotiateEncoding(c.GetHeader("Accept-Encoding"))
		if algorithm == utils.CompressionNone || c.Request.Method == "HEAD" {
			c.Next()
			return
		}

		writer := &compressWriter{ResponseWriter: c.Writer, algorithm: algorithm}
		c.Writer = writer
		defer func() {
			if err := writer.close(); err != nil {
				logger.Warn("Failed to flush compressed response", "error", err)
			}
			c.Writer = writer.ResponseWriter
		}()

		c.Next()
	}
}
