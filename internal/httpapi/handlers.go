package httpapi

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ledgerdesk/coa/internal/accounts"
	"github.com/ledgerdesk/coa/internal/changelog"
	"github.com/ledgerdesk/coa/internal/chart"
	"github.com/ledgerdesk/coa/internal/id"
	"github.com/ledgerdesk/coa/internal/model"
)

// AccountResponse is the JSON form of an account.
type AccountResponse struct {
	ID            string  `json:"id"`
	Code          string  `json:"code"`
	AccountType   string  `json:"account_type"`
	ParentID      *string `json:"parent_id"`
	IsActive      bool    `json:"is_active"`
	AllowPosting  bool    `json:"allow_posting"`
	NameEN        string  `json:"name_en"`
	NameAR        string  `json:"name_ar"`
	DescriptionEN string  `json:"description_en"`
	DescriptionAR string  `json:"description_ar"`
}

// TreeNodeResponse is one entry of the pre-order tree walk.
type TreeNodeResponse struct {
	AccountResponse
	Level int `json:"level"`
}

// NextCodeResponse carries a proposed account code.
type NextCodeResponse struct {
	Code string `json:"code"`
}

// FindingResponse is one chart check finding.
type FindingResponse struct {
	Rule        int    `json:"rule"`
	AccountID   string `json:"account_id"`
	Description string `json:"description"`
	Advisory    bool   `json:"advisory"`
}

// CreateAccountRequest is the body of POST /api/accounts.
type CreateAccountRequest struct {
	Code          string  `json:"code"` // proposed by the server when empty
	AccountType   string  `json:"account_type"`
	ParentID      *string `json:"parent_id"`
	NameEN        string  `json:"name_en"`
	NameAR        string  `json:"name_ar"`
	DescriptionEN string  `json:"description_en"`
	DescriptionAR string  `json:"description_ar"`
	IsActive      *bool   `json:"is_active"`     // default true
	AllowPosting  *bool   `json:"allow_posting"` // default true
}

func toResponse(a model.Account) AccountResponse {
	res := AccountResponse{
		ID:            a.ID,
		Code:          a.Code,
		AccountType:   string(a.Type),
		IsActive:      a.IsActive,
		AllowPosting:  a.AllowPosting,
		NameEN:        a.NameEN,
		NameAR:        a.NameAR,
		DescriptionEN: a.DescriptionEN,
		DescriptionAR: a.DescriptionAR,
	}
	if a.ParentID != "" {
		parent := a.ParentID
		res.ParentID = &parent
	}
	return res
}

// snapshot loads the current chart; every request works on a fresh copy.
func (s *Server) snapshot(c *fiber.Ctx) (*accounts.Service, error) {
	accts, err := s.repo.List(c.UserContext())
	if err != nil {
		return nil, fmt.Errorf("loading accounts: %w", err)
	}
	return accounts.NewService(accts), nil
}

func parseTypeParam(raw string) (model.AccountType, error) {
	t, err := model.ParseAccountType(raw)
	if err != nil {
		return "", fiber.NewError(fiber.StatusBadRequest, "account_type must be one of ASSET, LIABILITY, EQUITY, REVENUE, EXPENSE")
	}
	return t, nil
}

// GET /api/accounts?type=...
func (s *Server) listAccounts() fiber.Handler {
	return func(c *fiber.Ctx) error {
		svc, err := s.snapshot(c)
		if err != nil {
			return err
		}

		list := svc.All()
		if raw := c.Query("type"); raw != "" {
			t, err := parseTypeParam(raw)
			if err != nil {
				return err
			}
			list = svc.ByType(t)
		}

		res := make([]AccountResponse, 0, len(list))
		for _, a := range list {
			res = append(res, toResponse(a))
		}
		return c.JSON(res)
	}
}

// GET /api/accounts/:id
func (s *Server) getAccount() fiber.Handler {
	return func(c *fiber.Ctx) error {
		svc, err := s.snapshot(c)
		if err != nil {
			return err
		}
		acct, ok := svc.Get(id.Normalize(c.Params("id")))
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, accounts.ErrNotFound.Error())
		}
		return c.JSON(toResponse(acct))
	}
}

// GET /api/accounts/:id/children
func (s *Server) accountChildren() fiber.Handler {
	return func(c *fiber.Ctx) error {
		svc, err := s.snapshot(c)
		if err != nil {
			return err
		}
		accountID := id.Normalize(c.Params("id"))
		if !svc.Exists(accountID) {
			return fiber.NewError(fiber.StatusNotFound, accounts.ErrNotFound.Error())
		}

		kids := svc.Children(accountID)
		res := make([]AccountResponse, 0, len(kids))
		for _, a := range kids {
			res = append(res, toResponse(a))
		}
		return c.JSON(res)
	}
}

// GET /api/accounts/tree
func (s *Server) accountTree() fiber.Handler {
	return func(c *fiber.Ctx) error {
		svc, err := s.snapshot(c)
		if err != nil {
			return err
		}

		tree := svc.Tree()
		res := make([]TreeNodeResponse, 0, len(tree))
		for _, e := range tree {
			res = append(res, TreeNodeResponse{AccountResponse: toResponse(e.Account), Level: e.Level})
		}
		return c.JSON(res)
	}
}

// GET /api/accounts/next-code?type=...&parent_id=...
func (s *Server) nextCode() fiber.Handler {
	return func(c *fiber.Ctx) error {
		t, err := parseTypeParam(c.Query("type"))
		if err != nil {
			return err
		}
		svc, err := s.snapshot(c)
		if err != nil {
			return err
		}
		code, err := svc.NextCode(t, id.Normalize(c.Query("parent_id")))
		if err != nil {
			return err
		}
		return c.JSON(NextCodeResponse{Code: code})
	}
}

// GET /api/accounts/check
func (s *Server) checkChart() fiber.Handler {
	return func(c *fiber.Ctx) error {
		svc, err := s.snapshot(c)
		if err != nil {
			return err
		}

		findings := svc.Validate()
		res := make([]FindingResponse, 0, len(findings))
		for _, f := range findings {
			res = append(res, FindingResponse{
				Rule:        f.Rule,
				AccountID:   f.AccountID,
				Description: f.Description,
				Advisory:    f.Advisory(),
			})
		}
		return c.JSON(res)
	}
}

// POST /api/accounts
func (s *Server) createAccount() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateAccountRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		t, err := parseTypeParam(body.AccountType)
		if err != nil {
			return err
		}

		acct := model.Account{
			ID:            id.New(),
			Code:          strings.TrimSpace(body.Code),
			Type:          t,
			IsActive:      true,
			AllowPosting:  true,
			NameEN:        strings.TrimSpace(body.NameEN),
			NameAR:        strings.TrimSpace(body.NameAR),
			DescriptionEN: strings.TrimSpace(body.DescriptionEN),
			DescriptionAR: strings.TrimSpace(body.DescriptionAR),
		}
		if acct.NameEN == "" && acct.NameAR == "" {
			return fiber.NewError(fiber.StatusBadRequest, "name_en or name_ar is required")
		}
		if body.ParentID != nil {
			acct.ParentID = id.Normalize(*body.ParentID)
		}
		if body.IsActive != nil {
			acct.IsActive = *body.IsActive
		}
		if body.AllowPosting != nil {
			acct.AllowPosting = *body.AllowPosting
		}

		proposed := false
		if acct.Code == "" {
			svc, err := s.snapshot(c)
			if err != nil {
				return err
			}
			if acct.ParentID != "" && !svc.Exists(acct.ParentID) {
				return fiber.NewError(fiber.StatusUnprocessableEntity, fmt.Sprintf("parent %s not found", acct.ParentID))
			}
			if acct.Code, err = svc.NextCode(t, acct.ParentID); err != nil {
				return err
			}
			proposed = true
		}

		if err := s.repo.Insert(c.UserContext(), acct); err != nil {
			return insertError(err)
		}

		s.record(acct, proposed)
		return c.Status(fiber.StatusCreated).JSON(toResponse(acct))
	}
}

func insertError(err error) error {
	switch {
	case errors.Is(err, accounts.ErrDuplicateCode), errors.Is(err, accounts.ErrDuplicateID):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, accounts.ErrUnknownParent):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, chart.ErrInvalidType):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return err
}

// record appends the creation to the chart log. Failures are logged, not
// returned: the account is already stored.
func (s *Server) record(acct model.Account, proposed bool) {
	if s.logRoot == "" {
		return
	}
	if err := changelog.Append(s.logRoot, changelog.ForAdd("api", acct, proposed, time.Now())); err != nil {
		slog.Warn("chart log append failed", slog.String("account_id", acct.ID), slog.String("err", err.Error()))
	}
}
