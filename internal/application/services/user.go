package services

import (
	"context"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/crypto/bcrypt"

	"fileshare-api/internal/application/ports"
	domain "fileshare-api/internal/domain/user"
)

type UserService struct {
	userRepository domain.Repository
	mCounter       *prometheus.CounterVec
}

func NewUserService(
	userRepository domain.Repository,
	mCounter *prometheus.CounterVec,
) ports.UserService {
	return &UserService{
		userRepository: userRepository,
		mCounter:       mCounter,
	}
}

func (us *UserService) FindUserByID(ctx context.Context, uuid domain.UUID) (*domain.User, error) {
	u, err := us.userRepository.FetchUserByID(ctx, uuid)
	if err != nil {
		return nil, err
	}

	return u, nil
}

func (us *UserService) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, err := us.userRepository.FetchUserByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		return nil, err
	}

	return u, nil
}

func (us *UserService) Register(ctx context.Context, email, password, name string) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	h := string(hash)

	u, err := us.userRepository.CreateUser(ctx, domain.User{
		Email:        domain.NormalizeEmail(email),
		PasswordHash: &h,
		Name:         strings.TrimSpace(name),
	})
	if err != nil {
		return nil, err
	}

	us.mCounter.WithLabelValues("user_registered_total").Inc()

	return u, nil
}
