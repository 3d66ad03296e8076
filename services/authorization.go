package services

import (
	"context"
	"errors"

	"blog-cms/models"
	"blog-cms/repositories"
)

// IsAuthorizedToEdit reports whether caller may edit or delete article: an
// admin, or the article's author. The article's Author must be loaded.
func IsAuthorizedToEdit(caller models.Identity, article *models.Article) bool {
	if article == nil || !caller.IsAuthenticated() {
		return false
	}
	return caller.IsAdmin() || article.IsAuthor(caller.Username)
}

// storedIdentity replaces the role carried by the token with the stored one,
// so a demoted admin loses admin rights before the token expires. A caller
// whose account no longer exists becomes anonymous.
func storedIdentity(ctx context.Context, users repositories.UserRepository, caller models.Identity) (models.Identity, error) {
	if !caller.IsAuthenticated() {
		return caller, nil
	}
	user, err := users.GetByUsername(ctx, caller.Username)
	if err != nil {
		var nf models.ErrorNotFound
		if errors.As(err, &nf) {
			return models.Identity{}, nil
		}
		return models.Identity{}, err
	}
	caller.UserID = user.ID
	caller.Role = user.Role
	return caller, nil
}
