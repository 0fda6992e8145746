package transport

import "time"

type SignUpRequest struct {
	Name     string `json:"name"     validate:"required,max=255"`
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type SignInRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UserResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type SignInResponse struct {
	TokenType        string       `json:"token_type"`
	AccessToken      string       `json:"access_token"`
	RefreshToken     string       `json:"refresh_token"`
	AccessExpiresAt  *time.Time   `json:"access_expires_at"`
	RefreshExpiresAt *time.Time   `json:"refresh_expires_at"`
	User             UserResponse `json:"user"`
}

type ProfileResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}

type AuthorRequest struct {
	Nome      string  `json:"nome"      validate:"required,max=255"`
	Biografia *string `json:"biografia" validate:"omitempty,max=5000"`
}

type BookRequest struct {
	Titulo        string `json:"titulo"         validate:"required,max=255"`
	Genero        string `json:"genero"         validate:"omitempty,max=100"`
	AnoPublicacao int    `json:"ano_publicacao" validate:"required,gte=0,lte=9999"`
	Disponivel    *bool  `json:"disponivel"`
	AuthorID      uint   `json:"author_id"      validate:"required"`
}

type PatchBookRequest struct {
	Titulo        *string `json:"titulo"         validate:"omitempty,min=1,max=255"`
	Genero        *string `json:"genero"         validate:"omitempty,max=100"`
	AnoPublicacao *int    `json:"ano_publicacao" validate:"omitempty,gte=0,lte=9999"`
	Disponivel    *bool   `json:"disponivel"`
	AuthorID      *uint   `json:"author_id"      validate:"omitempty,min=1"`
}

type PatchAuthorRequest struct {
	Nome      *string `json:"nome"      validate:"omitempty,min=1,max=255"`
	Biografia *string `json:"biografia" validate:"omitempty,max=5000"`
}

// AuthorQuery is a normalized author listing request.
type AuthorQuery struct {
	Q      string
	Sort   string
	Desc   bool
	Offset int
	Limit  int
}

// BookQuery is a normalized book listing request. Nil filters are not applied.
type BookQuery struct {
	Q          string
	AuthorID   *uint
	Disponivel *bool
	AnoDe      *int
	AnoAte     *int
	Sort       string
	Desc       bool
	Offset     int
	Limit      int
}

type PageMeta struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
	HasPrev    bool  `json:"has_prev"`
	HasNext    bool  `json:"has_next"`
}
