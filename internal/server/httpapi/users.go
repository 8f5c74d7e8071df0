package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/userservice/internal/common"
	"github.com/dmitrijs2005/userservice/internal/server/access"
	"github.com/dmitrijs2005/userservice/internal/server/models"
)

func (s *Server) createAccount(c *gin.Context) {
	if err := s.policy.Check(access.ActionCreate, requester(c), nil); err != nil {
		s.writeError(c, err)
		return
	}

	in, cleanup, err := bindAccountInput(c)
	defer cleanup()
	if err != nil {
		s.writeError(c, err)
		return
	}

	created, err := s.accounts.Create(c.Request.Context(), in)
	s.metrics.RecordAccountWrite(string(access.ActionCreate), err)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, s.accountResponse(created))
}

func (s *Server) listAccounts(c *gin.Context) {
	if err := s.policy.Check(access.ActionList, requester(c), nil); err != nil {
		s.writeError(c, err)
		return
	}

	items, err := s.accounts.List(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, s.accountList(items))
}

func (s *Server) retrieveAccount(c *gin.Context) {
	target, ok := s.loadTarget(c, access.ActionRetrieve)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.accountResponse(target))
}

func (s *Server) updateAccount(c *gin.Context) {
	s.update(c, access.ActionUpdate)
}

func (s *Server) partialUpdateAccount(c *gin.Context) {
	s.update(c, access.ActionPartialUpdate)
}

func (s *Server) update(c *gin.Context, action access.Action) {
	target, ok := s.loadTarget(c, action)
	if !ok {
		return
	}

	in, cleanup, err := bindAccountInput(c)
	defer cleanup()
	if err != nil {
		s.writeError(c, err)
		return
	}

	updated, err := s.accounts.Update(c.Request.Context(), target.Account, in, action == access.ActionPartialUpdate)
	s.metrics.RecordAccountWrite(string(action), err)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, s.accountResponse(updated))
}

func (s *Server) destroyAccount(c *gin.Context) {
	if err := s.policy.Check(access.ActionDestroy, requester(c), nil); err != nil {
		s.writeError(c, err)
		return
	}

	id, ok := accountID(c)
	if !ok {
		s.writeError(c, common.ErrorNotFound)
		return
	}

	err := s.accounts.Delete(c.Request.Context(), id)
	s.metrics.RecordAccountWrite(string(access.ActionDestroy), err)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// loadTarget fetches the account named in the path and checks that the
// requester may perform action on it. On failure the response is written
// and ok is false.
func (s *Server) loadTarget(c *gin.Context, action access.Action) (*models.AccountWithProfile, bool) {
	id, ok := accountID(c)
	if !ok {
		s.writeError(c, common.ErrorNotFound)
		return nil, false
	}

	target, err := s.accounts.Get(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return nil, false
	}

	if err := s.policy.Check(action, requester(c), target.Account); err != nil {
		s.writeError(c, err)
		return nil, false
	}

	return target, true
}

func accountID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
