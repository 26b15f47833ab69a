package controllers

import (
	"context"

	"cryptotracker/src/models"
	"cryptotracker/src/schemas"
	"cryptotracker/src/services"
)

func (c *Controller) Register(ctx context.Context, req *schemas.RegisterRequest) (*schemas.TokenResponse, error) {
	return c.Auth.Register(ctx, req)
}

func (c *Controller) Login(ctx context.Context, req *schemas.LoginRequest) (*schemas.TokenResponse, error) {
	return c.Auth.Login(ctx, req)
}

func (c *Controller) ForgotPassword(ctx context.Context, email string) error {
	return c.Auth.ForgotPassword(ctx, email)
}

func (c *Controller) ResetPassword(ctx context.Context, token, password string) error {
	return c.Auth.ResetPassword(ctx, token, password)
}

func (c *Controller) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return c.Users.GetByID(ctx, id)
}

func (c *Controller) Me(user *models.User) *schemas.MeResponse {
	return &schemas.MeResponse{User: services.UserResponse(user)}
}
