package types

import "github.com/samber/lo"

type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodCard         PaymentMethod = "CARD"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodMobileMoney  PaymentMethod = "MOBILE_MONEY"
)

type ExpenseCategory string

const (
	ExpenseCategoryElectricity ExpenseCategory = "ELECTRICITY"
	ExpenseCategoryWater       ExpenseCategory = "WATER"
	ExpenseCategoryRent        ExpenseCategory = "RENT"
	ExpenseCategoryEquipment   ExpenseCategory = "EQUIPMENT"
	ExpenseCategoryMaintenance ExpenseCategory = "MAINTENANCE"
	ExpenseCategorySupplies    ExpenseCategory = "SUPPLIES"
	ExpenseCategoryOther       ExpenseCategory = "OTHER"
)

var ExpenseCategories = []ExpenseCategory{
	ExpenseCategoryElectricity,
	ExpenseCategoryWater,
	ExpenseCategoryRent,
	ExpenseCategoryEquipment,
	ExpenseCategoryMaintenance,
	ExpenseCategorySupplies,
	ExpenseCategoryOther,
}

func (c ExpenseCategory) Valid() bool { return lo.Contains(ExpenseCategories, c) }

type AssetCondition string

const (
	AssetConditionGood   AssetCondition = "good"
	AssetConditionRepair AssetCondition = "repair"
	AssetConditionBad    AssetCondition = "bad"
)
