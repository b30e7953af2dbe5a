package httpserver

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/phenrril/cosmetica/internal/domain"
)

type selectionRequest struct {
	IDs []string `json:"ids" validate:"required,min=1"`
}

func (s *Server) apiWishlist(w http.ResponseWriter, r *http.Request) {
	p, _ := principalFrom(r.Context())
	userID, err := userParam(r)
	if err != nil {
		s.failWishlist(w, r, err)
		return
	}
	defer timed(r, "db")()
	items, err := s.Wishlist.List(r.Context(), p, userID)
	if err != nil {
		s.failWishlist(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": items})
}

func (s *Server) apiWishlistAdd(w http.ResponseWriter, r *http.Request) {
	p, _ := principalFrom(r.Context())
	userID, productID, err := readItem(w, r, p)
	if err != nil {
		s.failWishlist(w, r, err)
		return
	}
	entry, err := s.Wishlist.AddItem(r.Context(), p, userID, productID)
	if err != nil {
		s.failWishlist(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Item added to wishlist", "data": entry})
}

func (s *Server) apiWishlistRemove(w http.ResponseWriter, r *http.Request) {
	p, _ := principalFrom(r.Context())
	id, err := pathID(r, "wishlistItemId", "wishlist item")
	if err != nil {
		s.failWishlist(w, r, err)
		return
	}
	if err := s.Wishlist.RemoveItem(r.Context(), p, id); err != nil {
		s.failWishlist(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Item removed from wishlist"})
}

func (s *Server) apiWishlistClear(w http.ResponseWriter, r *http.Request) {
	p, _ := principalFrom(r.Context())
	userID, err := userParam(r)
	if err != nil {
		s.failWishlist(w, r, err)
		return
	}
	n, err := s.Wishlist.Clear(r.Context(), p, userID)
	if err != nil {
		s.failWishlist(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Wishlist cleared", "deletedCount": n})
}

func (s *Server) apiWishlistMoveAll(w http.ResponseWriter, r *http.Request) {
	p, _ := principalFrom(r.Context())
	userID, err := userParam(r)
	if err != nil {
		s.failWishlist(w, r, err)
		return
	}
	defer timed(r, "db")()
	res, err := s.Wishlist.MoveAllToCart(r.Context(), p, userID)
	if err != nil {
		s.failWishlist(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": moveMessage(res), "data": res})
}

func (s *Server) apiWishlistMoveSelected(w http.ResponseWriter, r *http.Request) {
	p, _ := principalFrom(r.Context())
	userID, err := userParam(r)
	if err != nil {
		s.failWishlist(w, r, err)
		return
	}
	var req selectionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.failWishlist(w, r, err)
		return
	}
	ids := make([]uuid.UUID, 0, len(req.IDs))
	for _, raw := range req.IDs {
		id, err := parseID(raw, "ids")
		if err != nil {
			s.failWishlist(w, r, err)
			return
		}
		ids = append(ids, id)
	}
	defer timed(r, "db")()
	res, err := s.Wishlist.MoveSelectedToCart(r.Context(), p, userID, ids)
	if err != nil {
		s.failWishlist(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": moveMessage(res), "data": res})
}

func moveMessage(res *domain.MoveResult) string {
	if len(res.Skipped) == 0 {
		return fmt.Sprintf("%d item(s) moved to cart", res.Moved)
	}
	return fmt.Sprintf("%d item(s) moved to cart, %d unavailable", res.Moved, len(res.Skipped))
}
