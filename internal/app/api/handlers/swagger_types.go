package handlers

import (
	"github.com/fatflowers/gymdesk/internal/app/service/auth"
	"github.com/fatflowers/gymdesk/internal/app/service/statistics"
	"github.com/fatflowers/gymdesk/internal/models"
	"github.com/fatflowers/gymdesk/pkg/response"
)

// Envelope types for the generated API docs. swag cannot expand generics, so
// each payload gets a concrete wrapper.

// RespOK is the envelope of endpoints that only report success.
type RespOK struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    OKResult                 `json:"data"`
}

// RespError is the envelope of every failed request. Data is always null.
type RespError struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    interface{}              `json:"data"`
}

type RespHealth struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    Health                   `json:"data"`
}

type RespUser struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    models.User              `json:"data"`
}

type RespLogin struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    auth.LoginResult         `json:"data"`
}

type RespTokenPair struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    auth.TokenPair           `json:"data"`
}

type RespMember struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    models.Member            `json:"data"`
}

// MemberPage documents response.Page[models.Member].
type MemberPage struct {
	Items []models.Member `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

type RespMemberPage struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    MemberPage               `json:"data"`
}

type RespPlan struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    models.Plan              `json:"data"`
}

type RespPlans struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    []models.Plan            `json:"data"`
}

type RespMembership struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    models.Membership        `json:"data"`
}

type RespMemberships struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    []models.Membership      `json:"data"`
}

type RespMembershipLogs struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    []models.MembershipLog   `json:"data"`
}

type RespAttendance struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    models.Attendance        `json:"data"`
}

type AttendancePage struct {
	Items []models.Attendance `json:"items"`
	Total int64               `json:"total"`
	Page  int                 `json:"page"`
	Limit int                 `json:"limit"`
}

type RespAttendancePage struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    AttendancePage           `json:"data"`
}

type RespPayment struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    models.Payment           `json:"data"`
}

type PaymentPage struct {
	Items []models.Payment `json:"items"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}

type RespPaymentPage struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    PaymentPage              `json:"data"`
}

type RespExpense struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    models.Expense           `json:"data"`
}

type ExpensePage struct {
	Items []models.Expense `json:"items"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}

type RespExpensePage struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    ExpensePage              `json:"data"`
}

type RespAsset struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    models.Asset             `json:"data"`
}

type AssetPage struct {
	Items []models.Asset `json:"items"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

type RespAssetPage struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    AssetPage                `json:"data"`
}

type RespOverview struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    statistics.Overview      `json:"data"`
}

type RespSnapshots struct {
	Code    response.APIResponseCode    `json:"code"`
	Message string                      `json:"message"`
	Data    []models.StatsDailySnapshot `json:"data"`
}
