package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/labelprint/orderexport/pkg/errors"
)

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"Validation", &errors.ErrValidation{Message: "bad"}, http.StatusBadRequest},
		{"Invalid input", &errors.ErrInvalidInput{}, http.StatusBadRequest},
		{"Empty result", &errors.ErrEmptyResult{OrderCount: 2}, http.StatusUnprocessableEntity},
		{"Not found", &errors.ErrNotFound{Resource: "export file", ID: "x.csv"}, http.StatusNotFound},
		{"Conflict", fmt.Errorf("failed to save export file: %w", &errors.ErrConflict{Resource: "export file", ID: "x.csv"}), http.StatusConflict},
		{"Unexpected", assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			respondError(c, tt.err, zap.NewNop())

			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
