package engine

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/nordblog/blogapi/media"
	"github.com/nordblog/blogapi/models"
	"github.com/nordblog/blogapi/store"
	"github.com/nordblog/blogapi/utils"
)

// SignupInput carries the public signup payload.
type SignupInput struct {
	FirstName       string
	LastName        string
	Email           string
	DOB             time.Time
	Password        string
	PasswordConfirm string
	Avatar          *ImageUpload
}

// UpdateUserInput carries a basic-info update for the caller's own record.
type UpdateUserInput struct {
	FirstName string
	LastName  string
	Email     string
	DOB       time.Time
	Avatar    *ImageUpload
}

// Profile bundles a user with their authored post and comment counts.
type Profile struct {
	User         *models.User `json:"user"`
	PostCount    int64        `json:"post_count"`
	CommentCount int64        `json:"comment_count"`
}

func validateName(field, value string) (string, error) {
	value = utils.SanitizePlain(strings.TrimSpace(value))
	if value == "" {
		return "", invalid(field, field+" has to be specified")
	}
	return value, nil
}

func validateEmail(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", invalid("email", "email has to be specified")
	}
	if _, err := mail.ParseAddress(value); err != nil {
		return "", invalid("email", "email is not valid")
	}
	return value, nil
}

func (e *Engine) validateAge(dob time.Time) error {
	if dob.IsZero() {
		return invalid("dob", "date of birth has to be specified")
	}
	if dob.AddDate(18, 0, 0).After(e.now()) {
		return invalid("dob", "you must be over 18 years old")
	}
	return nil
}

// Signup creates a new user account. Email uniqueness is enforced and the
// password is stored only as a bcrypt hash. An uploaded avatar is stored
// before the record is persisted; without one the shared default avatar is
// used.
func (e *Engine) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	firstName, err := validateName("first_name", in.FirstName)
	if err != nil {
		return nil, err
	}
	lastName, err := validateName("last_name", in.LastName)
	if err != nil {
		return nil, err
	}
	email, err := validateEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if err := e.validateAge(in.DOB); err != nil {
		return nil, err
	}
	if in.Password == "" {
		return nil, invalid("password", "password must be specified")
	}
	if in.Password != in.PasswordConfirm {
		return nil, invalid("password_confirm", "passwords don't match")
	}

	if _, err := e.stores.Users().GetByEmail(ctx, email); err == nil {
		return nil, conflict("that email is already taken")
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, upstream("user lookup", err)
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, upstream("password hashing", err)
	}

	avatar := defaultAvatar(e.defaults)
	if in.Avatar != nil {
		avatar, err = e.uploadImage(ctx, in.Avatar, "avatars")
		if err != nil {
			return nil, err
		}
	}

	user := &models.User{
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		DOB:          in.DOB,
		PasswordHash: hash,
		Avatar:       avatar,
		CreatedAt:    e.now(),
	}
	if err := e.stores.Users().Create(ctx, user); err != nil {
		if in.Avatar != nil {
			// the upload is unreferenced now
			_ = e.releaseMedia(ctx, avatar.StorageKey)
		}
		if errors.Is(err, store.ErrDuplicate) {
			return nil, conflict("that email is already taken")
		}
		return nil, upstream("user create", err)
	}
	return user, nil
}

// Login verifies an email/password pair and returns the matching user. Both
// an unknown email and a wrong password yield the same Unauthorized error.
func (e *Engine) Login(ctx context.Context, email, password string) (*models.User, error) {
	user, err := e.stores.Users().GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, unauthorized("incorrect credentials")
		}
		return nil, upstream("user lookup", err)
	}
	if !utils.CheckPassword(user.PasswordHash, password) {
		return nil, unauthorized("incorrect credentials")
	}
	return user, nil
}

// GetProfile returns the caller's own record together with authored post and
// comment counts.
func (e *Engine) GetProfile(ctx context.Context, ident *Identity) (*Profile, error) {
	if ident == nil {
		return nil, unauthenticated()
	}
	user, err := e.stores.Users().GetByID(ctx, ident.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFound("no user found")
		}
		return nil, upstream("user lookup", err)
	}
	postCount, err := e.stores.Posts().CountByAuthor(ctx, ident.UserID)
	if err != nil {
		return nil, upstream("post count", err)
	}
	commentCount, err := e.stores.Comments().CountByAuthor(ctx, ident.UserID)
	if err != nil {
		return nil, upstream("comment count", err)
	}
	return &Profile{User: user, PostCount: postCount, CommentCount: commentCount}, nil
}

// UpdateUserInfo updates the caller's own basic information. An email change
// is re-checked for uniqueness against all other users. A replacement avatar
// is uploaded before the record is updated, and the superseded one is
// released only afterwards.
func (e *Engine) UpdateUserInfo(ctx context.Context, ident *Identity, in UpdateUserInput) (*models.User, error) {
	if ident == nil {
		return nil, unauthenticated()
	}
	firstName, err := validateName("first_name", in.FirstName)
	if err != nil {
		return nil, err
	}
	lastName, err := validateName("last_name", in.LastName)
	if err != nil {
		return nil, err
	}
	email, err := validateEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if err := e.validateAge(in.DOB); err != nil {
		return nil, err
	}

	user, err := e.stores.Users().GetByID(ctx, ident.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFound("user doesn't exist")
		}
		return nil, upstream("user lookup", err)
	}

	if other, err := e.stores.Users().GetByEmail(ctx, email); err == nil {
		if other.ID != user.ID {
			return nil, conflict("that email is already taken")
		}
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, upstream("user lookup", err)
	}

	oldAvatar := user.Avatar
	if in.Avatar != nil {
		avatar, err := e.uploadImage(ctx, in.Avatar, "avatars")
		if err != nil {
			return nil, err
		}
		user.Avatar = avatar
	}

	user.FirstName = firstName
	user.LastName = lastName
	user.Email = email
	user.DOB = in.DOB

	if err := e.stores.Users().Update(ctx, user); err != nil {
		if in.Avatar != nil {
			// the fresh upload is unreferenced now
			_ = e.releaseMedia(ctx, user.Avatar.StorageKey)
		}
		if errors.Is(err, store.ErrDuplicate) {
			return nil, conflict("that email is already taken")
		}
		return nil, upstream("user update", err)
	}

	if in.Avatar != nil && !oldAvatar.IsDefault {
		if err := e.releaseMedia(ctx, oldAvatar.StorageKey); err != nil {
			return user, err
		}
	}
	return user, nil
}

// UpdatePassword changes the caller's password after re-verifying the old
// one. A mismatch is an authorization failure, not a validation error.
func (e *Engine) UpdatePassword(ctx context.Context, ident *Identity, oldPassword, newPassword, confirm string) error {
	if ident == nil {
		return unauthenticated()
	}
	if oldPassword == "" {
		return invalid("old_password", "old password must be specified")
	}
	if newPassword == "" {
		return invalid("password", "password must be specified")
	}
	if newPassword != confirm {
		return invalid("password_confirm", "passwords don't match")
	}

	user, err := e.stores.Users().GetByID(ctx, ident.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return notFound("user doesn't exist")
		}
		return upstream("user lookup", err)
	}
	if !utils.CheckPassword(user.PasswordHash, oldPassword) {
		return unauthorized("incorrect password")
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return upstream("password hashing", err)
	}
	user.PasswordHash = hash
	if err := e.stores.Users().Update(ctx, user); err != nil {
		return upstream("user update", err)
	}
	return nil
}

// DeleteAccount removes the caller's user record together with every post
// they authored, every comment on those posts, and every comment they wrote
// elsewhere. All record deletions happen inside one atomic boundary so no
// comment is ever readable without its post and no post without its author.
// Non-default images are released from the media store only after the commit.
func (e *Engine) DeleteAccount(ctx context.Context, ident *Identity, password string) error {
	if ident == nil {
		return unauthenticated()
	}
	user, err := e.stores.Users().GetByID(ctx, ident.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return notFound("the user doesn't exist")
		}
		return upstream("user lookup", err)
	}
	if !utils.CheckPassword(user.PasswordHash, password) {
		return unauthorized("incorrect credentials")
	}

	posts, err := e.stores.Posts().ListByAuthor(ctx, user.ID)
	if err != nil {
		return upstream("post lookup", err)
	}

	var releaseKeys []string
	for _, post := range posts {
		if !post.Photo.IsDefault {
			releaseKeys = append(releaseKeys, post.Photo.StorageKey)
		}
	}
	if !user.Avatar.IsDefault {
		releaseKeys = append(releaseKeys, user.Avatar.StorageKey)
	}

	err = e.stores.Atomic(ctx, func(tx store.Stores) error {
		for _, post := range posts {
			if err := tx.Comments().DeleteByPost(ctx, post.ID); err != nil {
				return err
			}
			if err := tx.Posts().Delete(ctx, post.ID); err != nil {
				return err
			}
		}
		if err := tx.Comments().DeleteByAuthor(ctx, user.ID); err != nil {
			return err
		}
		return tx.Users().Delete(ctx, user.ID)
	})
	if err != nil {
		return upstream("account delete", err)
	}

	return e.releaseMedia(ctx, releaseKeys...)
}

func defaultAvatar(defaults *media.Defaults) models.Image {
	ref := defaults.Avatar()
	return models.Image{IsDefault: true, OriginalName: "default.webp", URL: ref.URL}
}
