package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/userservice/internal/common"
	"github.com/dmitrijs2005/userservice/internal/server/services"
)

type loginRequest struct {
	Email    string `json:"email" form:"email" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" form:"refresh_token" binding:"required"`
}

func (s *Server) obtainToken(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		s.bindError(c, err, map[string]string{"email": req.Email, "password": req.Password})
		return
	}

	pair, err := s.auth.Login(c.Request.Context(), req.Email, req.Password)
	s.metrics.RecordLogin(err)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			unauthorized(c, msgBadCredentials)
			return
		}
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, pair)
}

func (s *Server) refreshToken(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBind(&req); err != nil {
		s.bindError(c, err, map[string]string{"refresh_token": req.RefreshToken})
		return
	}

	pair, err := s.auth.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, pair)
}

// bindError reports empty required fields per field and anything else,
// such as a malformed body, as a single detail.
func (s *Server) bindError(c *gin.Context, err error, fields map[string]string) {
	verr := services.ValidationError{}
	for name, v := range fields {
		if v == "" {
			verr.Add(name, services.MsgRequired)
		}
	}
	if len(verr) > 0 {
		s.writeError(c, verr)
		return
	}
	s.writeError(c, &requestError{msg: fmt.Sprintf("Parse error - %v", err)})
}
