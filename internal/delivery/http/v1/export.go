package v1

import (
	"encoding/csv"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/go-taskboard/internal/models"
)

const exportFilename = "reporte_misiones.csv"

var exportHeader = []string{"ID", "Título", "Estado", "Fecha Objetivo", "Etiquetas", "Usuario", "Avance"}

func exportRow(t *models.Task) []string {
	names := make([]string, len(t.Tags))
	for i, tag := range t.Tags {
		names[i] = tag.Name
	}

	owner := ""
	if t.Owner != nil {
		owner = t.Owner.Username
	}

	progress := t.Progress
	if progress == "" {
		progress = "0%"
	}

	return []string{
		strconv.FormatInt(t.ID, 10),
		t.Title,
		t.Status.Label(),
		t.TargetDate.Format(dateLayout),
		strings.Join(names, ", "),
		owner,
		progress,
	}
}

// HandleExportCSV streams every task visible to the user as CSV.
func (h *handlerImpl) HandleExportCSV(c *gin.Context) {
	tasks, err := h.tasks.ExportTasks(c, currentUserID(c))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+exportFilename+`"`)
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	if err = w.Write(exportHeader); err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to write csv header")
		return
	}
	for i := range tasks {
		if err = w.Write(exportRow(&tasks[i])); err != nil {
			h.logger.Error().
				Err(err).
				Msg("failed to write csv row")
			return
		}
	}
	w.Flush()
	if err = w.Error(); err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to flush csv")
	}
}
