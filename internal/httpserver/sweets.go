package httpserver

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"sweetshop/internal/domain"
)

type sweetHandlers struct {
	svc    SweetService
	logger logrus.FieldLogger
}

type sweetRequest struct {
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Description string          `json:"description"`
}

type restockRequest struct {
	Amount int `json:"amount"`
}

// Prices go out as JSON numbers with two decimals.
type sweetResponse struct {
	ID          string      `json:"_id"`
	Name        string      `json:"name"`
	Category    string      `json:"category"`
	Price       json.Number `json:"price"`
	Quantity    int         `json:"quantity"`
	Description string      `json:"description"`
}

type purchaseResponse struct {
	ID          string      `json:"_id"`
	SweetID     string      `json:"sweetId,omitempty"`
	SweetName   string      `json:"sweetName"`
	Category    string      `json:"category"`
	Price       json.Number `json:"price"`
	PurchasedAt time.Time   `json:"purchasedAt"`
}

func price(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}

func toSweetResponse(s domain.Sweet) sweetResponse {
	return sweetResponse{
		ID:          s.ID,
		Name:        s.Name,
		Category:    s.Category,
		Price:       price(s.Price),
		Quantity:    s.Quantity,
		Description: s.Description,
	}
}

func toSweetList(in []domain.Sweet) []sweetResponse {
	out := make([]sweetResponse, 0, len(in))
	for _, s := range in {
		out = append(out, toSweetResponse(s))
	}
	return out
}

func toPurchaseResponse(p domain.Purchase) purchaseResponse {
	return purchaseResponse{
		ID:          p.ID,
		SweetID:     p.SweetID,
		SweetName:   p.SweetName,
		Category:    p.Category,
		Price:       price(p.Price),
		PurchasedAt: p.PurchasedAt,
	}
}

func (h *sweetHandlers) list(c *gin.Context) {
	sweets, err := h.svc.List(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toSweetList(sweets))
}

func (h *sweetHandlers) search(c *gin.Context) {
	f := domain.SearchFilter{
		Name:     c.Query("name"),
		Category: c.Query("category"),
		MinPrice: queryDecimal(c, "minPrice"),
		MaxPrice: queryDecimal(c, "maxPrice"),
	}
	sweets, err := h.svc.Search(c.Request.Context(), f)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toSweetList(sweets))
}

// queryDecimal reads an optional price bound; unparsable values are ignored.
func queryDecimal(c *gin.Context, key string) decimal.NullDecimal {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

func (h *sweetHandlers) bindSweet(c *gin.Context) (domain.SweetInput, bool) {
	var req sweetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return domain.SweetInput{}, false
	}
	return domain.SweetInput{
		Name:        req.Name,
		Category:    req.Category,
		Price:       req.Price,
		Quantity:    req.Quantity,
		Description: req.Description,
	}, true
}

func (h *sweetHandlers) create(c *gin.Context) {
	in, ok := h.bindSweet(c)
	if !ok {
		return
	}
	s, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, toSweetResponse(*s))
}

func (h *sweetHandlers) update(c *gin.Context) {
	in, ok := h.bindSweet(c)
	if !ok {
		return
	}
	s, err := h.svc.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toSweetResponse(*s))
}

func (h *sweetHandlers) remove(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Sweet deleted successfully"})
}

func (h *sweetHandlers) restock(c *gin.Context) {
	var req restockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	s, err := h.svc.Restock(c.Request.Context(), c.Param("id"), req.Amount)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toSweetResponse(*s))
}

func (h *sweetHandlers) purchase(c *gin.Context) {
	id := identity(c)
	p, err := h.svc.Purchase(c.Request.Context(), id.ID, c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Purchase successful", "purchase": toPurchaseResponse(*p)})
}

func (h *sweetHandlers) history(c *gin.Context) {
	id := identity(c)
	purchases, err := h.svc.History(c.Request.Context(), id.ID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	out := make([]purchaseResponse, 0, len(purchases))
	for _, p := range purchases {
		out = append(out, toPurchaseResponse(p))
	}
	c.JSON(http.StatusOK, out)
}
