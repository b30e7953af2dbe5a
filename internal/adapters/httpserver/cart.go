package httpserver

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/phenrril/cosmetica/internal/domain"
)

type itemRequest struct {
	UserID    string `json:"userId"`
	ProductID string `json:"productId" validate:"required"`
}

type quantityRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

// readItem decodes an {userId, productId} body on behalf of the caller.
func readItem(w http.ResponseWriter, r *http.Request, p domain.Principal) (userID, productID uuid.UUID, err error) {
	var req itemRequest
	if err = decodeJSON(w, r, &req); err != nil {
		return
	}
	if userID, err = bodyUser(req.UserID, p); err != nil {
		return
	}
	productID, err = parseID(req.ProductID, "productId")
	return
}

func (s *Server) apiCart(w http.ResponseWriter, r *http.Request) {
	p, _ := principalFrom(r.Context())
	userID, err := userParam(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	defer timed(r, "db")()
	items, err := s.Cart.List(r.Context(), p, userID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) apiCartSummary(w http.ResponseWriter, r *http.Request) {
	p, _ := principalFrom(r.Context())
	userID, err := userParam(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	defer timed(r, "db")()
	sum, err := s.Cart.Summary(r.Context(), p, userID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) apiCartAdd(w http.ResponseWriter, r *http.Request) {
	p, _ := principalFrom(r.Context())
	userID, productID, err := readItem(w, r, p)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	item, created, err := s.Cart.AddItem(r.Context(), p, userID, productID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	code := http.StatusOK
	if created {
		code = http.StatusCreated
	}
	writeJSON(w, code, item)
}

func (s *Server) apiCartUpdate(w http.ResponseWriter, r *http.Request) {
	p, _ := principalFrom(r.Context())
	id, err := pathID(r, "cartItemId", "cart item")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req quantityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	item, err := s.Cart.UpdateQuantity(r.Context(), p, id, *req.Quantity)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) apiCartRemove(w http.ResponseWriter, r *http.Request) {
	p, _ := principalFrom(r.Context())
	id, err := pathID(r, "cartItemId", "cart item")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.Cart.RemoveItem(r.Context(), p, id); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Item removed from cart"})
}

func (s *Server) apiCartClear(w http.ResponseWriter, r *http.Request) {
	p, _ := principalFrom(r.Context())
	userID, err := userParam(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	n, err := s.Cart.Clear(r.Context(), p, userID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Cart cleared successfully", "deletedCount": n})
}

func (s *Server) apiCartMoveToWishlist(w http.ResponseWriter, r *http.Request) {
	p, _ := principalFrom(r.Context())
	id, err := pathID(r, "cartItemId", "cart item")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	entry, err := s.Cart.MoveToWishlist(r.Context(), p, id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Item moved to wishlist", "data": entry})
}
