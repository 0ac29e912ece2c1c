package handlers

import (
	"net/http"

	"github.com/dimitrije/gather-api/internal/models"
	"github.com/dimitrije/gather-api/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
)

type GroupHandler struct {
	groupService      GroupServiceInterface
	userService       UserServiceInterface
	invitationService InvitationServiceInterface
}

func NewGroupHandler(groupService GroupServiceInterface, userService UserServiceInterface, invitationService InvitationServiceInterface) *GroupHandler {
	return &GroupHandler{
		groupService:      groupService,
		userService:       userService,
		invitationService: invitationService,
	}
}

func (h *GroupHandler) List(c *drift.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	groups, err := h.userService.GetGroups(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err, "failed to list groups")
		return
	}

	resp := make([]dto.GroupResponse, len(groups))
	for i := range groups {
		resp[i] = toGroupResponse(&groups[i])
	}
	_ = c.JSON(http.StatusOK, resp)
}

func (h *GroupHandler) Create(c *drift.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.CreateGroupRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}
	if req.Name == "" {
		c.BadRequest("name is required")
		return
	}

	group, err := h.groupService.Create(c.Request.Context(), userID, req.Name, req.Description)
	if err != nil {
		writeError(c, err, "failed to create group")
		return
	}

	_ = c.JSON(http.StatusCreated, toGroupResponse(group))
}

func (h *GroupHandler) Get(c *drift.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	groupID, ok := uuidParam(c, "id", "group")
	if !ok {
		return
	}

	group, err := h.groupService.GetForMember(c.Request.Context(), groupID, userID)
	if err != nil {
		writeError(c, err, "failed to get group")
		return
	}

	_ = c.JSON(http.StatusOK, toGroupResponse(group))
}

func (h *GroupHandler) Update(c *drift.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	groupID, ok := uuidParam(c, "id", "group")
	if !ok {
		return
	}

	var req dto.UpdateGroupRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}
	if req.Name != nil && *req.Name == "" {
		c.BadRequest("name cannot be empty")
		return
	}

	group, err := h.groupService.Update(c.Request.Context(), userID, groupID, req.Name, req.Description)
	if err != nil {
		writeError(c, err, "failed to update group")
		return
	}

	_ = c.JSON(http.StatusOK, toGroupResponse(group))
}

func (h *GroupHandler) Delete(c *drift.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	groupID, ok := uuidParam(c, "id", "group")
	if !ok {
		return
	}

	if err := h.groupService.Delete(c.Request.Context(), userID, groupID); err != nil {
		writeError(c, err, "failed to delete group")
		return
	}

	_ = c.JSON(http.StatusOK, map[string]string{"message": "group deleted"})
}

func (h *GroupHandler) Members(c *drift.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	groupID, ok := uuidParam(c, "id", "group")
	if !ok {
		return
	}

	members, err := h.groupService.GetMembers(c.Request.Context(), userID, groupID)
	if err != nil {
		writeError(c, err, "failed to list members")
		return
	}

	resp := make([]dto.GroupMemberResponse, len(members))
	for i, m := range members {
		resp[i] = dto.GroupMemberResponse{
			UserID:   m.UserID,
			IsAdmin:  m.IsAdmin,
			JoinedAt: m.CreatedAt,
			User:     toUserResponse(m.User),
		}
	}
	_ = c.JSON(http.StatusOK, resp)
}

// InviteMembers sends group invitations to every user in the request body.
func (h *GroupHandler) InviteMembers(c *drift.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	groupID, ok := uuidParam(c, "id", "group")
	if !ok {
		return
	}

	var req dto.InviteRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	invitations, err := h.invitationService.Create(c.Request.Context(), models.KindGroup, userID, req.UserIDs, &groupID)
	if err != nil {
		writeError(c, err, "failed to invite members")
		return
	}

	_ = c.JSON(http.StatusCreated, toInvitationResponses(invitations))
}

func (h *GroupHandler) RemoveMember(c *drift.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	groupID, ok := uuidParam(c, "id", "group")
	if !ok {
		return
	}
	memberID, ok := uuidParam(c, "userId", "user")
	if !ok {
		return
	}

	if err := h.groupService.RemoveMember(c.Request.Context(), userID, groupID, memberID); err != nil {
		writeError(c, err, "failed to remove member")
		return
	}

	_ = c.JSON(http.StatusOK, map[string]string{"message": "member removed"})
}

func (h *GroupHandler) AddAdmin(c *drift.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	groupID, ok := uuidParam(c, "id", "group")
	if !ok {
		return
	}
	memberID, ok := uuidParam(c, "userId", "user")
	if !ok {
		return
	}

	if err := h.groupService.AddAdmin(c.Request.Context(), userID, groupID, memberID); err != nil {
		writeError(c, err, "failed to add admin")
		return
	}

	_ = c.JSON(http.StatusOK, map[string]string{"message": "admin added"})
}

func (h *GroupHandler) RemoveAdmin(c *drift.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	groupID, ok := uuidParam(c, "id", "group")
	if !ok {
		return
	}
	memberID, ok := uuidParam(c, "userId", "user")
	if !ok {
		return
	}

	if err := h.groupService.RemoveAdmin(c.Request.Context(), userID, groupID, memberID); err != nil {
		writeError(c, err, "failed to remove admin")
		return
	}

	_ = c.JSON(http.StatusOK, map[string]string{"message": "admin removed"})
}
