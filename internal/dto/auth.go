package dto

import "github.com/shopspring/decimal"

type RegisterRequestDTO struct {
	Email       string          `json:"email" validate:"required,email,max=254" example:"student@uni.edu"`
	Password    string          `json:"password" validate:"required,min=8" example:"password123"`
	FirstName   string          `json:"first_name" validate:"max=150" example:"Asha"`
	LastName    string          `json:"last_name" validate:"max=150" example:"Rao"`
	StudentID   string          `json:"student_id" validate:"max=20" example:"STU-0042"`
	University  string          `json:"university" validate:"max=200" example:"State University"`
	GPA         decimal.Decimal `json:"gpa" swaggertype:"string" example:"8.20"`
	UserType    string          `json:"user_type" validate:"omitempty,oneof=student financier" example:"student"`
	CompanyName string          `json:"company_name" validate:"max=200" example:"Acme Capital"`
}

type RegisterResponseDTO struct {
	Message string `json:"message"`
}

type LoginRequestDTO struct {
	Email    string `json:"email" validate:"required,email" example:"student@uni.edu"`
	Password string `json:"password" validate:"required" example:"password123"`
}

type LoginResponseDTO struct {
	Message string `json:"message"`
}
