package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/labelprint/orderexport/internal/repository"
	"github.com/labelprint/orderexport/internal/service"
)

// HandleListOrders handles GET /app/api/orders.
// Query params: query (order name, customer or PO), from, to (RFC3339 or YYYY-MM-DD), limit, offset.
func HandleListOrders(svc *service.ExportService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, offset := pagination(c)
		filter := repository.OrderFilter{
			Query:  strings.TrimSpace(c.Query("query")),
			Limit:  limit,
			Offset: offset,
		}

		if v := c.Query("from"); v != "" {
			from, err := parseTimeParam(v, false)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from", "details": err.Error()})
				return
			}
			filter.From = &from
		}
		if v := c.Query("to"); v != "" {
			to, err := parseTimeParam(v, true)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to", "details": err.Error()})
				return
			}
			filter.To = &to
		}

		orders, err := svc.ListOrders(c.Request.Context(), filter)
		if err != nil {
			respondError(c, err, logger)
			return
		}

		out := make([]service.OrderResponse, 0, len(orders))
		for _, o := range orders {
			out = append(out, service.NewOrderResponse(o))
		}

		c.JSON(http.StatusOK, gin.H{
			"orders": out,
			"limit":  limit,
			"offset": offset,
		})
	}
}

// parseTimeParam accepts RFC3339 or a plain date. A plain date used as an upper bound
// covers the whole day.
func parseTimeParam(v string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Millisecond)
	}
	return t, nil
}
