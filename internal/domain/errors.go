package domain

import "errors"

// Precondition failures returned by the ledger services. Messages are shown to API callers.
var (
	ErrMissingField              = errors.New("Missing required field")
	ErrInvalidAddress            = errors.New("Invalid address")
	ErrZeroCredits               = errors.New("Total credits must be > 0")
	ErrZeroPrice                 = errors.New("Price must be > 0")
	ErrPrecision                 = errors.New("Amount has more than 18 decimal places")
	ErrInvalidAmount             = errors.New("Amount must be > 0")
	ErrProjectNotFound           = errors.New("Project not found")
	ErrProjectInactive           = errors.New("Project is not active")
	ErrProjectAlreadyVerified    = errors.New("Project already verified")
	ErrNotProjectIssuer          = errors.New("Only the project issuer can perform this action")
	ErrOrderNotFound             = errors.New("Order not found")
	ErrOrderInactive             = errors.New("Order is not active")
	ErrNotOrderSeller            = errors.New("Only the seller can cancel this order")
	ErrInsufficientBalance       = errors.New("Insufficient balance")
	ErrSellerInsufficientBalance = errors.New("Seller has insufficient balance")
	ErrExceedsOrder              = errors.New("Amount exceeds order")
	ErrSelfTrade                 = errors.New("Cannot buy own credits")
	ErrSelfTransfer              = errors.New("Cannot transfer to self")
	ErrInsufficientPayment       = errors.New("Insufficient payment")
	ErrFeeTooHigh                = errors.New("Fee too high")
	ErrNoFees                    = errors.New("No fees to withdraw")
	ErrUnauthorized              = errors.New("Caller is not the platform owner")
	ErrPlatformNotInitialized    = errors.New("Platform not initialized")
	ErrCertificateNotFound       = errors.New("Retirement certificate not found")
	ErrLengthMismatch            = errors.New("Accounts and project ids length mismatch")
	ErrBatchTooLarge             = errors.New("Too many balance lookups in one batch")
	ErrCreditSupplyExceeded      = errors.New("Credit supply limit exceeded")
)

// Account and login failures.
var (
	ErrAccountExists         = errors.New("An account with this email or address already exists")
	ErrAccountNotFound       = errors.New("Account not found")
	ErrEmailPasswordRequired = errors.New("Email and password are required")
	ErrInvalidEmail          = errors.New("Invalid email format")
	ErrInvalidPassword       = errors.New("Invalid password format")
	ErrInvalidDisplayName    = errors.New("Display name contains invalid characters")
	ErrIncorrectPassword     = errors.New("Incorrect email or password")
	ErrNotAuthenticated      = errors.New("Not authenticated")
)
