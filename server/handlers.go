package server

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bububa/purecheck/chat"
	"github.com/bububa/purecheck/errdefs"
	"github.com/bububa/purecheck/session"
	"github.com/bububa/purecheck/upload"
)

// multipart framing allowance on top of the file size limit
const formOverhead = 1 << 20

type chatRequest struct {
	Message string `json:"message"`
	Mode    string `json:"mode"`
}

func (s *Server) healthz(c *gin.Context) {
	resp := gin.H{"status": "ok"}
	if s.readiness != nil {
		resp["guidelines_ready"] = s.readiness.Ready(c.Request.Context())
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) upload(c *gin.Context) {
	const op = "server.upload"
	ctx := c.Request.Context()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.validator.MaxBytes+formOverhead)
	fh, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.fail(c, errdefs.Validation(op, "File too large"))
			return
		}
		s.fail(c, errdefs.Validation(op, "No image file provided"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		s.fail(c, err)
		return
	}
	defer f.Close()
	// one extra byte lets the validator see an oversized body
	data, err := io.ReadAll(io.LimitReader(f, s.validator.MaxBytes+1))
	if err != nil {
		s.fail(c, err)
		return
	}
	img, err := s.validator.Validate(fh.Filename, data)
	if err != nil {
		s.fail(c, err)
		return
	}

	var location string
	if s.images != nil {
		if location, err = s.images.Save(ctx, upload.StoredName(fh.Filename, s.now()), img.MIME, data); err != nil {
			s.fail(c, err)
			return
		}
	}

	res, err := s.analyzer.Analyze(ctx, img)
	if err != nil {
		s.fail(c, err)
		return
	}

	id := s.sessionID(c, true)
	sc := &session.Context{
		Product:   res.Product,
		Analysis:  res.Analysis,
		Result:    res.Score,
		ImagePath: location,
		UpdatedAt: s.now(),
	}
	if err := s.sessions.Put(ctx, id, sc); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"product_data": res.Product,
		"analysis":     res.Analysis,
		"inr_result":   res.Score,
		"image_path":   location,
	})
}

func (s *Server) ask(c *gin.Context) {
	const op = "server.ask"
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, errdefs.Validation(op, "No message provided"))
		return
	}
	mode, err := chat.ParseMode(req.Mode)
	if err != nil {
		s.fail(c, err)
		return
	}
	product, err := s.activeContext(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	ans, err := s.chat.Ask(c.Request.Context(), chat.Request{
		Question: req.Message,
		Mode:     mode,
		Product:  product,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"response": ans.Text,
		"mode":     ans.Mode,
	})
}

func (s *Server) clearSession(c *gin.Context) {
	if id := s.sessionID(c, false); id != "" {
		if err := s.sessions.Clear(c.Request.Context(), id); err != nil {
			s.fail(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) getSession(c *gin.Context) {
	sc, err := s.activeContext(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	if sc == nil {
		c.JSON(http.StatusOK, gin.H{"active": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"active":       true,
		"product_data": sc.Product,
		"analysis":     sc.Analysis,
		"inr_result":   sc.Result,
	})
}

// fail writes the error response. Internal details are only exposed for client errors.
func (s *Server) fail(c *gin.Context, err error) {
	status := errdefs.HTTPStatus(err)
	c.Error(err)
	resp := gin.H{
		"success": false,
		"error":   errdefs.UserMessage(err),
	}
	if status < http.StatusInternalServerError || gin.IsDebugging() {
		resp["details"] = err.Error()
	}
	if status >= http.StatusInternalServerError {
		s.logger.ErrorContext(c.Request.Context(), "request failed",
			slog.String("request_id", c.GetString(requestIDKey)),
			slog.String("path", c.Request.URL.Path),
			slog.Any("error", err))
	}
	c.AbortWithStatusJSON(status, resp)
}
