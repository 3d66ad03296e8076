package models

type RegisterRequest struct {
	Username string `json:"username" form:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type CreateCategoryRequest struct {
	Name string `json:"name" form:"name" binding:"required,min=1,max=100"`
}

// ArticleInput is the bound body of the create and edit forms.
type ArticleInput struct {
	ID         uint   `json:"id" form:"id"`
	Title      string `json:"title" form:"title" binding:"required,notblank,max=255"`
	Content    string `json:"content" form:"content" binding:"required,notblank"`
	CategoryID *uint  `json:"category_id" form:"category_id"`
	Tags       string `json:"tags" form:"tags" binding:"max=1000"`
}

// ArticleViewModel is what the create and edit forms are rendered from.
type ArticleViewModel struct {
	ID         uint       `json:"id"`
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	CategoryID *uint      `json:"category_id"`
	Categories []Category `json:"categories"`
	Tags       string     `json:"tags"`
}

// FromInput keeps whatever the user typed so a rejected form can be redisplayed.
func (vm *ArticleViewModel) FromInput(in ArticleInput) {
	vm.ID = in.ID
	vm.Title = in.Title
	vm.Content = in.Content
	vm.CategoryID = in.CategoryID
	vm.Tags = in.Tags
}

type ArticleDeleteModel struct {
	Article Article `json:"article"`
	Tags    string  `json:"tags"`
}
