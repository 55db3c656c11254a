package model

type ErrorResponse struct {
	Error string `json:"detail"`
}

type IdResponse struct {
	Id string `json:"id"`
}

type RenderResponse struct {
	Abc string `json:"abc"`
}
