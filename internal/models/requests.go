// Package models holds the request payloads bound from JSON bodies.
package models

import "encoding/json"

type SignUpRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type CreateWorkspaceRequest struct {
	Name string `json:"name" binding:"required"`
}

type UpdateWorkspaceRequest struct {
	Name string `json:"name" binding:"required"`
}

type InviteMemberRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required"`
}

type InvitationTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

type CreateFormRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description *string `json:"description"`
	Theme       string  `json:"theme"`
}

type UpdatePageRequest struct {
	PageID  string          `json:"pageId" binding:"required"`
	Content json.RawMessage `json:"content" binding:"required"`
}

type SubmitFormRequest struct {
	Content json.RawMessage `json:"content" binding:"required"`
}

type AddAssetRequest struct {
	ImageURL      string `json:"imageUrl" binding:"required,url"`
	ImagePublicID string `json:"imagePublicId" binding:"required"`
}

type DeleteAssetRequest struct {
	AssetID string `json:"assetId" binding:"required"`
}

type SignUploadRequest struct {
	Type         string `json:"type" binding:"required"`
	TypeID       string `json:"typeId" binding:"required"`
	ResourceType string `json:"resourceType" binding:"required"`
}

type DeleteMediaRequest struct {
	PublicID string `json:"publicId" binding:"required"`
}
