package httpapi

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *Server) accountingSummary(c *gin.Context) {
	sum, err := s.deps.Accounting.Summary(c.Request.Context())
	if err != nil {
		s.fail(c, "AccountingSummary", err)
		return
	}
	c.JSON(http.StatusOK, toSummaryDTO(sum))
}

// accountingExport buffers the workbook so a failure can still be reported
// as a JSON error instead of a truncated download.
func (s *Server) accountingExport(c *gin.Context) {
	var buf bytes.Buffer
	if err := s.deps.Accounting.ExportCompleted(c.Request.Context(), &buf); err != nil {
		s.fail(c, "AccountingExport", err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="servicios-completados.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
