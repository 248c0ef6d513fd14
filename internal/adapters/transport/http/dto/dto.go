package dto

type RegisterDTO struct {
	Username string `json:"username" validate:"required,max=50"`
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=128"`
	Bio      string `json:"bio"      validate:"max=1000"`
}

type VerifyDTO struct {
	Email string `json:"email"             validate:"required,email"`
	Code  string `json:"verification_code" validate:"required"`
}

type LoginDTO struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ResetRequestDTO struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordDTO.Email is optional and narrows the code lookup to one account.
type ResetPasswordDTO struct {
	ResetCode   string `json:"reset_code"   validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6,max=128"`
	Email       string `json:"email"        validate:"omitempty,email"`
}

type ResendVerificationDTO struct {
	Email string `json:"email" validate:"required,email"`
}

type ProfileUpdateDTO struct {
	Username string `json:"username"    validate:"required,max=50"`
	Bio      string `json:"descripcion" validate:"max=1000"`
}

type PostDTO struct {
	Title string `json:"titulo" validate:"required,max=255"`
	Body  string `json:"texto"  validate:"required"`
}

type CommentCreateDTO struct {
	PostID int64  `json:"publicacion_id" validate:"required,gt=0"`
	Body   string `json:"comentario"     validate:"required"`
}

type CommentUpdateDTO struct {
	Body string `json:"comentario" validate:"required"`
}

type LoginResponse struct {
	Message     string      `json:"message"`
	User        UserSummary `json:"user"`
	AccessToken string      `json:"access_token"`
	ExpiresAt   int64       `json:"expires_at"`
}

type UserSummary struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type ProfileResponse struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	Bio         string `json:"descripcion"`
	PictureURL  string `json:"foto_perfil"`
	Verified    bool   `json:"verificado"`
	MemberSince int64  `json:"created_at"`
}
