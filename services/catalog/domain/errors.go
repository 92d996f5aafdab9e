package domain

import "errors"

// Sentinel errors for the catalog domain. Use errors.Is() to check these.
var (
	// ErrSupplierGoodNotFound indicates the requested supplier good does not
	// exist within the business.
	ErrSupplierGoodNotFound = errors.New("supplier good not found")

	// ErrBusinessGoodNotFound indicates the requested business good does not
	// exist within the business.
	ErrBusinessGoodNotFound = errors.New("business good not found")

	// ErrGoodAlreadyExists indicates a good with the same name already exists
	// for the business.
	ErrGoodAlreadyExists = errors.New("good already exists")

	// ErrInvalidGood indicates the good violates domain constraints
	// (missing fields, non-positive quantities or prices).
	ErrInvalidGood = errors.New("invalid good")

	// ErrInvalidComposition indicates the composition request is malformed:
	// both ingredients and set menu present, or neither.
	ErrInvalidComposition = errors.New("invalid composition")

	// ErrNestedSetMenu indicates a set menu references another set menu.
	// Components must be leaf, ingredient-based goods.
	ErrNestedSetMenu = errors.New("set menu components must be ingredient-based goods")

	// ErrGoodInUse indicates the good cannot be deleted because open orders,
	// set menus, ingredient lists or purchases still reference it.
	ErrGoodInUse = errors.New("good is referenced and cannot be deleted")
)
