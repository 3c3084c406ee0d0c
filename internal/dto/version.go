package dto

type CreateVersionReq struct {
	Notes string `json:"notes"`
}
