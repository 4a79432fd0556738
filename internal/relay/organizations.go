package relay

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/heapdog/heapdog/internal/backend"
	"github.com/heapdog/heapdog/internal/domain"
)

// OrganizationHandler relays organization, membership and invitation
// endpoints. Request bodies are forwarded opaquely; the backend owns all
// validation and authorization rules for them.
type OrganizationHandler struct {
	backend *backend.Client
}

// NewOrganizationHandler creates a new OrganizationHandler.
func NewOrganizationHandler(client *backend.Client) *OrganizationHandler {
	return &OrganizationHandler{backend: client}
}

// Create relays organization creation.
func (h *OrganizationHandler) Create(c echo.Context) error {
	return h.forwardBody(c, http.MethodPost, "/organizations")
}

// Switch relays switching the user's current organization.
func (h *OrganizationHandler) Switch(c echo.Context) error {
	return h.forwardBody(c, http.MethodPatch, "/organizations/switch")
}

// CheckSlug relays the slug availability check.
func (h *OrganizationHandler) CheckSlug(c echo.Context) error {
	slug := c.QueryParam("slug")
	if slug == "" {
		return fmt.Errorf("%w: slug is required", domain.ErrInvalidInput)
	}

	path := "/organizations/check-slug?slug=" + url.QueryEscape(slug)
	return h.forward(c, http.MethodGet, path, nil)
}

// Invite relays a member invitation.
func (h *OrganizationHandler) Invite(c echo.Context) error {
	return h.forwardBody(c, http.MethodPost, "/organizations/invite")
}

// BasicInfo relays fetching an organization's basic info.
func (h *OrganizationHandler) BasicInfo(c echo.Context) error {
	path := "/organizations/" + url.PathEscape(c.Param("slug")) + "/basic-info"
	return h.forward(c, http.MethodGet, path, nil)
}

// UpdateBasicInfo relays updating an organization's basic info.
func (h *OrganizationHandler) UpdateBasicInfo(c echo.Context) error {
	path := "/organizations/" + url.PathEscape(c.Param("slug")) + "/basic-info"
	return h.forwardBody(c, http.MethodPatch, path)
}

// UpdateMemberRole relays a member role change.
func (h *OrganizationHandler) UpdateMemberRole(c echo.Context) error {
	path := fmt.Sprintf("/organizations/%s/membership/%s/role",
		url.PathEscape(c.Param("slug")), url.PathEscape(c.Param("membershipId")))
	return h.forwardBody(c, http.MethodPatch, path)
}

// MembershipStatus relays the membership status lookup used while composing
// an invitation.
func (h *OrganizationHandler) MembershipStatus(c echo.Context) error {
	email := c.QueryParam("email")
	if email == "" {
		return fmt.Errorf("%w: email is required", domain.ErrInvalidInput)
	}

	path := fmt.Sprintf("/organizations/%s/membership-status?email=%s",
		url.PathEscape(c.Param("slug")), url.QueryEscape(email))
	return h.forward(c, http.MethodGet, path, nil)
}

// RevokeInvitation relays revoking a pending invitation.
func (h *OrganizationHandler) RevokeInvitation(c echo.Context) error {
	path := fmt.Sprintf("/organizations/%s/invitations/%s/revoke",
		url.PathEscape(c.Param("slug")), url.PathEscape(c.Param("invitationId")))
	return h.forwardBody(c, http.MethodPatch, path)
}

// AcceptInvitation relays accepting an invitation by code.
func (h *OrganizationHandler) AcceptInvitation(c echo.Context) error {
	return h.forwardBody(c, http.MethodPost, "/invitations/accept")
}

// forwardBody forwards the request with its JSON body passed through opaquely.
func (h *OrganizationHandler) forwardBody(c echo.Context, method, path string) error {
	var body json.RawMessage
	if err := c.Bind(&body); err != nil {
		return fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput)
	}
	if len(body) == 0 {
		return h.forward(c, method, path, nil)
	}
	return h.forward(c, method, path, body)
}

func (h *OrganizationHandler) forward(c echo.Context, method, path string, body any) error {
	token, ok := SessionToken(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	raw, err := h.backend.Do(c.Request().Context(), method, path, token, body)
	if err != nil {
		return err
	}

	return c.JSONBlob(http.StatusOK, raw)
}
