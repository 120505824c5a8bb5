package adminapi

import (
	"net/http"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/labstack/echo/v4"

	"github.com/despensa-app/despensa/internal/engine"
)

// exportRow is the flat CSV projection of a record with its derived
// state. Photos are deliberately excluded from exports.
type exportRow struct {
	ID             string `csv:"id"`
	Name           string `csv:"name"`
	Category       string `csv:"category"`
	Subcategory    string `csv:"subcategory"`
	OpenedAt       string `csv:"opened_at"`
	ShelfLifeValue int    `csv:"shelf_life_value"`
	ShelfLifeUnit  string `csv:"shelf_life_unit"`
	Expiry         string `csv:"expiry"`
	DaysRemaining  int    `csv:"days_remaining"`
	Status         string `csv:"status"`
	Lot            string `csv:"lot"`
	Store          string `csv:"store"`
	Price          string `csv:"price"`
}

// exportRecords streams all records as CSV, one row per record with the
// expiry state evaluated at request time.
func (h *Handler) exportRecords(c echo.Context) error {
	recs, err := h.svc.ListAll(c.Request().Context())
	if err != nil {
		return storeFail(c, err)
	}

	now := time.Now()
	rows := make([]exportRow, 0, len(recs))
	for _, rec := range recs {
		item, err := engine.Evaluate(rec, now)
		if err != nil {
			return fail(c, http.StatusInternalServerError, "DATE_RULE_ERROR", "Record cannot be evaluated", err.Error())
		}
		rows = append(rows, exportRow{
			ID:             rec.ID,
			Name:           rec.Name,
			Category:       string(rec.Category),
			Subcategory:    rec.Subcategory,
			OpenedAt:       rec.OpenedAt.Format("2006-01-02"),
			ShelfLifeValue: rec.ShelfLifeValue,
			ShelfLifeUnit:  string(rec.ShelfLifeUnit),
			Expiry:         item.Expiry.Format("2006-01-02"),
			DaysRemaining:  item.Days,
			Status:         item.Urgency.Label,
			Lot:            rec.Lot,
			Store:          rec.Store,
			Price:          rec.Price,
		})
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="despensa.csv"`)
	c.Response().WriteHeader(http.StatusOK)
	return gocsv.Marshal(rows, c.Response())
}
