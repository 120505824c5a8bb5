package adminapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/labstack/echo/v4"

	"github.com/despensa-app/despensa/internal/domain"
	"github.com/despensa-app/despensa/internal/engine"
	"github.com/despensa-app/despensa/internal/store"
)

type recordPayload struct {
	Name           string          `json:"name"`
	Category       string          `json:"category"`
	Subcategory    string          `json:"subcategory"`
	OpenedAt       string          `json:"opened_at"`
	ShelfLifeValue int             `json:"shelf_life_value"`
	ShelfLifeUnit  string          `json:"shelf_life_unit"`
	Usage          string          `json:"usage"`
	DosePlan       domain.DosePlan `json:"dose_plan"`
	Lot            string          `json:"lot"`
	Store          string          `json:"store"`
	Price          string          `json:"price"`
	Photo          string          `json:"photo"`
}

func (p *recordPayload) toRecord(id string) (domain.ProductRecord, error) {
	opened, err := dateparse.ParseAny(strings.TrimSpace(p.OpenedAt))
	if err != nil {
		return domain.ProductRecord{}, err
	}
	return domain.ProductRecord{
		ID:             id,
		Name:           strings.TrimSpace(p.Name),
		Category:       domain.Category(p.Category),
		Subcategory:    strings.TrimSpace(p.Subcategory),
		OpenedAt:       opened,
		ShelfLifeValue: p.ShelfLifeValue,
		ShelfLifeUnit:  domain.ShelfLifeUnit(p.ShelfLifeUnit),
		Usage:          strings.TrimSpace(p.Usage),
		DosePlan:       p.DosePlan,
		Lot:            strings.TrimSpace(p.Lot),
		Store:          strings.TrimSpace(p.Store),
		Price:          strings.TrimSpace(p.Price),
		Photo:          p.Photo,
	}, nil
}

// overview returns the grouped display model: every known category (even
// empty), most urgent items first.
func (h *Handler) overview(c echo.Context) error {
	groups, err := h.svc.Overview(c.Request().Context(), time.Now())
	if err != nil {
		return storeFail(c, err)
	}
	return ok(c, groups)
}

func (h *Handler) listRecords(c echo.Context) error {
	ctx := c.Request().Context()
	if cat := c.QueryParam("category"); cat != "" {
		recs, err := h.svc.ListByCategory(ctx, domain.Category(cat))
		if err != nil {
			return storeFail(c, err)
		}
		return ok(c, recs)
	}
	recs, err := h.svc.ListAll(ctx)
	if err != nil {
		return storeFail(c, err)
	}
	return ok(c, recs)
}

// getRecord returns the record joined with its derived expiry state, the
// way the detail screen shows it.
func (h *Handler) getRecord(c echo.Context) error {
	rec, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if store.IsNotFound(err) {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Record not found", nil)
	}
	if err != nil {
		return storeFail(c, err)
	}
	item, err := engine.Evaluate(*rec, time.Now())
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATE_RULE_ERROR", "Record cannot be evaluated", err.Error())
	}
	return ok(c, item)
}

func (h *Handler) createRecord(c echo.Context) error {
	return h.saveRecord(c, "")
}

func (h *Handler) updateRecord(c echo.Context) error {
	return h.saveRecord(c, c.Param("id"))
}

func (h *Handler) saveRecord(c echo.Context, id string) error {
	var payload recordPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse record", err.Error())
	}
	rec, err := payload.toRecord(id)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse opened_at date", err.Error())
	}
	saved, err := h.svc.Save(c.Request().Context(), rec)
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			return fail(c, http.StatusBadRequest, "INVALID_RECORD", verr.Error(), verr.Field)
		}
		return storeFail(c, err)
	}
	return ok(c, saved)
}

func (h *Handler) deleteRecord(c echo.Context) error {
	id := c.Param("id")
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return storeFail(c, err)
	}
	return ok(c, map[string]interface{}{"id": id})
}

type previewPayload struct {
	OpenedAt       string `json:"opened_at"`
	ShelfLifeValue int    `json:"shelf_life_value"`
	ShelfLifeUnit  string `json:"shelf_life_unit"`
}

// previewExpiry mirrors the form's live "expires on" preview without
// writing anything.
func (h *Handler) previewExpiry(c echo.Context) error {
	var payload previewPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse preview request", err.Error())
	}
	opened, err := dateparse.ParseAny(strings.TrimSpace(payload.OpenedAt))
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse opened_at date", err.Error())
	}
	expiry, err := engine.ComputeExpiry(opened, payload.ShelfLifeValue, domain.ShelfLifeUnit(payload.ShelfLifeUnit))
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unknown shelf-life unit", err.Error())
	}
	days := engine.DaysRemaining(expiry, time.Now())
	return ok(c, map[string]interface{}{
		"expiry":         expiry,
		"days_remaining": days,
		"urgency":        engine.Classify(days),
	})
}

type categoryInfo struct {
	Category      domain.Category `json:"category"`
	Subcategories []string        `json:"subcategories"`
}

func (h *Handler) listCategories(c echo.Context) error {
	out := make([]categoryInfo, 0, len(domain.Categories))
	for _, cat := range domain.Categories {
		out = append(out, categoryInfo{Category: cat, Subcategories: domain.Subcategories[cat]})
	}
	return ok(c, out)
}

func storeFail(c echo.Context, err error) error {
	return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Store operation failed", err.Error())
}
