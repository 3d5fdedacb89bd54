package db

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// User 定义了属主账号模型。本应用为单用户自托管，表中最多一行。
type User struct {
	gorm.Model
	Username string `gorm:"unique;not null"`
	Password string `gorm:"not null"`
}

// HasOwner 返回属主账号是否已经创建。
func HasOwner() (bool, error) {
	if DB == nil {
		return false, errors.New("database not initialized")
	}

	var count int64
	if err := DB.Model(&User{}).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// EnsureOwner 在首次启动时创建属主账号。
// 表中已有账号或未提供凭据时不做任何事，之后改环境变量不会产生第二个账号。
func EnsureOwner(username, password string) error {
	trimmedUser := strings.TrimSpace(username)
	trimmedPassword := strings.TrimSpace(password)
	if trimmedUser == "" || trimmedPassword == "" {
		return nil
	}

	exists, err := HasOwner()
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(trimmedPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return DB.Create(&User{Username: trimmedUser, Password: string(hashed)}).Error
}
