package storage

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Priscila-Moraes/dashboard-bryan-blandy/internal/models"
)

// Column aliases of the unattributed leads table. The sheet sync has written
// both Portuguese and English headers over time.
var (
	leadNameColumns   = []string{"lead_name", "nome", "name"}
	leadPhoneColumns  = []string{"phone", "telefone"}
	leadFormColumns   = []string{"form_name", "form"}
	leadReasonColumns = []string{"reason", "motivo"}
)

// LeadFromRow maps a loosely typed row to an UnattributedLead, taking the
// first non-empty value among each field's aliases.
func LeadFromRow(row map[string]any) models.UnattributedLead {
	return models.UnattributedLead{
		Date:   models.DayOf(stringField(row, "date")),
		Name:   firstField(row, leadNameColumns),
		Phone:  firstField(row, leadPhoneColumns),
		Form:   firstField(row, leadFormColumns),
		Reason: firstField(row, leadReasonColumns),
	}
}

func firstField(row map[string]any, columns []string) string {
	for _, c := range columns {
		if v := stringField(row, c); v != "" {
			return v
		}
	}
	return ""
}

func stringField(row map[string]any, column string) string {
	switch v := row[column].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		// phones stored as numbers must not come out in exponent form
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
