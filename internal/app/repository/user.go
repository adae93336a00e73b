package repository

import (
	"backoffice/internal/app/ds"
	"backoffice/internal/app/role"
)

func (r *Repository) UserExistsByLogin(login string) (bool, error) {
	var count int64
	err := r.db.Model(&ds.User{}).Where("login = ?", login).Count(&count).Error
	return count > 0, err
}

func (r *Repository) CreateUser(agencyID uint, login, hashedPassword, fullName string, userRole role.Role) (*ds.User, error) {
	user := ds.User{
		AgencyID: agencyID,
		Login:    login,
		Password: hashedPassword,
		FullName: fullName,
		Role:     userRole,
	}
	if err := r.db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) GetUserByLogin(login string) (*ds.User, error) {
	var user ds.User
	if err := r.db.Where("login = ?", login).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) GetUserByID(id uint) (*ds.User, error) {
	var user ds.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
