package types

type RegisterRequest struct {
    Email    string `json:"email" validate:"required,email"`
    Password string `json:"password" validate:"required,min=8"`
    Name     string `json:"name" validate:"required"`
}

type LoginRequest struct {
    Email    string `json:"email" validate:"required,email"`
    Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
    Name string `json:"name" validate:"required"`
}

type FriendRequestRequest struct {
    FriendCode string `json:"friend_code" validate:"required,len=7"`
}

type FriendRespondRequest struct {
    Action string `json:"action" validate:"required,oneof=accept reject"`
}

type ProjectCreateRequest struct {
    Title string `json:"title" validate:"required,max=200"`
}

type ProjectUpdateRequest struct {
    Title string `json:"title" validate:"required,max=200"`
}

type AddMemberRequest struct {
    UserID  string `json:"user_id" validate:"required,uuid4"`
    IsAdmin bool   `json:"is_admin"`
}

type PostChatRequest struct {
    Content string `json:"content" validate:"required,max=4000"`
}

type UpdateNodeRequest struct {
    Title       *string `json:"title" validate:"omitempty,max=200"`
    Description *string `json:"description" validate:"omitempty,max=2000"`
}

type MemoCreateRequest struct {
    Title   string `json:"title" validate:"required,max=200"`
    Content string `json:"content"`
}

type MemoUpdateRequest struct {
    Title   *string `json:"title" validate:"omitempty,max=200"`
    Content *string `json:"content"`
}
