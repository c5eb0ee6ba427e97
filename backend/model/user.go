package model

import (
	"errors"
	"strconv"

	"mealprep/backend/common"
	mperrors "mealprep/backend/common/errors"
	"mealprep/backend/common/i18n"

	"github.com/burugo/thing"
)

// User owns components, meal slots, favorites and a shopping list.
// Password never leaves the server.
type User struct {
	thing.BaseModel
	Username    string `db:"username,index:idx_user_username" json:"username" validate:"required,min=3,max=20"`
	Password    string `db:"password" json:"-" validate:"required,min=6,max=64"`
	DisplayName string `db:"display_name" json:"display_name" validate:"max=50"`
	Role        int    `db:"role" json:"role"`
	Status      int    `db:"status" json:"status"`
	Email       string `db:"email,index:idx_user_email" json:"email" validate:"omitempty,email,max=50"`
}

func (user *User) TableName() string {
	return "users"
}

// OwnerKey is the user id as the planner stores see it.
func (user *User) OwnerKey() string {
	return strconv.FormatInt(user.ID, 10)
}

var UserDB *thing.Thing[*User]

func UserInit() error {
	var err error
	UserDB, err = thing.Use[*User]()
	return err
}

func GetAllUsers(startIdx int, num int) ([]*User, error) {
	return UserDB.Order("id DESC").Fetch(startIdx, num)
}

func GetUserById(id int64, lang string) (*User, error) {
	if id == 0 {
		return nil, i18n.New(mperrors.ErrEmptyID, lang)
	}
	user, err := UserDB.ByID(id)
	if err != nil {
		return nil, i18n.Wrap(err, mperrors.ErrUserNotFound, lang)
	}
	return user, nil
}

func DeleteUserById(id int64, lang string) error {
	user, err := GetUserById(id, lang)
	if err != nil {
		return err
	}
	return UserDB.Delete(user)
}

func (user *User) Insert() error {
	if user.Password != "" {
		var err error
		user.Password, err = common.Password2Hash(user.Password)
		if err != nil {
			return err
		}
	}
	if user.Role == 0 {
		user.Role = common.RoleCommonUser
	}
	if user.Status == 0 {
		user.Status = common.UserStatusEnabled
	}
	return UserDB.Save(user)
}

func (user *User) Update(updatePassword bool) error {
	if updatePassword {
		var err error
		user.Password, err = common.Password2Hash(user.Password)
		if err != nil {
			return err
		}
	}
	return UserDB.Save(user)
}

// ValidateAndFill checks the credentials in user and replaces it with the stored record.
func (user *User) ValidateAndFill(lang string) error {
	if user.Username == "" || user.Password == "" {
		return i18n.New(mperrors.ErrEmptyCredentials, lang)
	}
	users, err := UserDB.Where("username = ?", user.Username).Fetch(0, 1)
	if err != nil || len(users) == 0 {
		return i18n.New(mperrors.ErrInvalidCredentials, lang)
	}
	found := users[0]
	if !common.ValidatePasswordAndHash(user.Password, found.Password) || found.Status != common.UserStatusEnabled {
		return i18n.New(mperrors.ErrInvalidCredentials, lang)
	}
	*user = *found
	return nil
}

func (user *User) FillUserByUsername() error {
	if user.Username == "" {
		return errors.New("username is empty")
	}
	users, err := UserDB.Where("username = ?", user.Username).Fetch(0, 1)
	if err != nil || len(users) == 0 {
		return errors.New("user not found")
	}
	*user = *users[0]
	return nil
}

func IsEmailAlreadyTaken(email string) bool {
	users, err := UserDB.Where("email = ?", email).Fetch(0, 1)
	return err == nil && len(users) > 0
}

func IsUsernameAlreadyTaken(username string) bool {
	users, err := UserDB.Where("username = ?", username).Fetch(0, 1)
	return err == nil && len(users) > 0
}
