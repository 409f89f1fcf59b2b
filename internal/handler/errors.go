package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/flicky/custorder-api/internal/logger"
	"github.com/flicky/custorder-api/internal/model"
	"github.com/flicky/custorder-api/internal/service"
)

// WriteError maps service failures to status codes. Unknown errors are 500s
// and carry the underlying message.
func WriteError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrDuplicateKey),
		errors.Is(err, service.ErrInsufficientStock):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidTransition):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		logger.FromCtx(c.Request.Context()).Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// respond writes the fetched value as a 200 or the error through WriteError.
func respond(c *gin.Context, fetch func() (any, error)) {
	v, err := fetch()
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

func notFound(c *gin.Context, entity string, id int64) {
	c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("%s not found with id: %d", entity, id)})
}

func deleted(c *gin.Context, entity string) {
	c.JSON(http.StatusOK, gin.H{"message": entity + " deleted successfully"})
}

// pathID parses the named path parameter as an id and writes a 400 when it
// is not a positive integer.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}

func pathStatus(c *gin.Context) (model.OrderStatus, bool) {
	return parseStatus(c, c.Param("status"))
}

func parseStatus(c *gin.Context, raw string) (model.OrderStatus, bool) {
	status, ok := model.ParseOrderStatus(raw)
	if !ok {
		badRequest(c, "invalid order status: "+raw)
		return "", false
	}
	return status, true
}

func requiredQuery(c *gin.Context, name string) (string, bool) {
	v, ok := c.GetQuery(name)
	if !ok || strings.TrimSpace(v) == "" {
		badRequest(c, "missing query parameter: "+name)
		return "", false
	}
	return v, true
}

func queryInt64(c *gin.Context, name string) (int64, bool) {
	raw, ok := requiredQuery(c, name)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		badRequest(c, "invalid "+name+": "+raw)
		return 0, false
	}
	return v, true
}

func queryInt(c *gin.Context, name string) (int, bool) {
	raw, ok := requiredQuery(c, name)
	if !ok {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		badRequest(c, "invalid "+name+": "+raw)
		return 0, false
	}
	return v, true
}

func queryDecimal(c *gin.Context, name string) (decimal.Decimal, bool) {
	raw, ok := requiredQuery(c, name)
	if !ok {
		return decimal.Zero, false
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		badRequest(c, "invalid "+name+": "+raw)
		return decimal.Zero, false
	}
	return v, true
}

// optionalDecimal returns nil for an absent parameter. ok is false only
// after a 400 has been written.
func optionalDecimal(c *gin.Context, name string) (*decimal.Decimal, bool) {
	raw, present := c.GetQuery(name)
	if !present || raw == "" {
		return nil, true
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		badRequest(c, "invalid "+name+": "+raw)
		return nil, false
	}
	return &d, true
}

func optionalString(c *gin.Context, name string) *string {
	v, ok := c.GetQuery(name)
	if !ok {
		return nil
	}
	return &v
}

const dateOnly = "2006-01-02"

// Timestamps without an offset, including the naive "2006-01-02T15:04:05"
// form, are read as UTC.
var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", dateOnly}

func queryTime(c *gin.Context, name string) (time.Time, bool) {
	t, _, ok := parseQueryTime(c, name)
	return t, ok
}

// queryEndTime moves a date-only value to the last instant of that day so
// inclusive ranges keep the whole day.
func queryEndTime(c *gin.Context, name string) (time.Time, bool) {
	t, layout, ok := parseQueryTime(c, name)
	if ok && layout == dateOnly {
		t = t.AddDate(0, 0, 1).Add(-time.Microsecond)
	}
	return t, ok
}

func parseQueryTime(c *gin.Context, name string) (time.Time, string, bool) {
	raw, ok := requiredQuery(c, name)
	if !ok {
		return time.Time{}, "", false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, layout, true
		}
	}
	badRequest(c, "invalid "+name+": "+raw)
	return time.Time{}, "", false
}
