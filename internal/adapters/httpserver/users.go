package httpserver

import (
	"net/http"

	"github.com/phenrril/cosmetica/internal/usecase"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type passwordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword" validate:"required"`
}

func (s *Server) apiRegister(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		s.fail(w, r, err)
		return
	}
	pic, f, err := formFile(r, "profilePic")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	defer closeFile(f)
	in := usecase.RegisterInput{
		Fullname: formString(r, "fullname").OrElse(""),
		Email:    formString(r, "email").OrElse(""),
		Mobile:   formString(r, "mobile").OrElse(""),
		Password: r.PostFormValue("password"),
		Gender:   formString(r, "gender").OrElse(""),
		Pincode:  formString(r, "pincode").OrElse(""),
		Address:  formString(r, "address").OrElse(""),
	}
	u, err := s.Users.Register(r.Context(), in, pic)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"message": "User registered successfully", "Usermodel": u})
}

func (s *Server) apiLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	sess, err := s.Users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeSession(w, sess)
}

func writeSession(w http.ResponseWriter, sess *usecase.Session) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "Login successful",
		"status":    "success",
		"token":     sess.Token,
		"expiresAt": sess.ExpiresAt,
		"user":      sess.User,
	})
}

func (s *Server) apiUserDetails(w http.ResponseWriter, r *http.Request) {
	p, _ := principalFrom(r.Context())
	userID, err := userParam(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	u, err := s.Users.Details(r.Context(), p, userID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "user": u})
}

func (s *Server) apiChangePassword(w http.ResponseWriter, r *http.Request) {
	p, _ := principalFrom(r.Context())
	userID, err := userParam(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req passwordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.Users.ChangePassword(r.Context(), p, userID, req.OldPassword, req.NewPassword); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Password updated successfully"})
}

func (s *Server) apiUpdateProfile(w http.ResponseWriter, r *http.Request) {
	p, _ := principalFrom(r.Context())
	userID, err := userParam(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := parseForm(w, r); err != nil {
		s.fail(w, r, err)
		return
	}
	pic, f, err := formFile(r, "profilePic")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	defer closeFile(f)
	patch := usecase.ProfilePatch{
		Fullname: formString(r, "fullname"),
		Mobile:   formString(r, "mobile"),
		Gender:   formString(r, "gender"),
		Pincode:  formString(r, "pincode"),
		Address:  formString(r, "address"),
	}
	u, err := s.Users.UpdateProfile(r.Context(), p, userID, patch, pic)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Profile updated successfully", "user": u})
}
