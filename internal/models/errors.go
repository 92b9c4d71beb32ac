package models

import "errors"

var ErrNotFound = errors.New("requested resource not found")
var ErrForbidden = errors.New("user does not have permission to access this resource")
var ErrConflict = errors.New("resource conflict, item already exists")
var ErrInvalidToken = errors.New("token not found or expired")
var ErrInvalidCredentials = errors.New("invalid credentials") // email or password provided does not match database record
var ErrEmailTaken = errors.New("email already registered")

// ErrInvalidTransition indicates that a requested status change is not
// allowed by the lifecycle table for that entity.
var ErrInvalidTransition = errors.New("status transition not allowed")

var ErrInsufficientStock = errors.New("not enough stock for one or more items")
var ErrOrderCannotBeCancelled = errors.New("order can no longer be cancelled")
var ErrOrderCannotBePaid = errors.New("order is not awaiting payment")
var ErrBookingAlreadyClaimed = errors.New("booking has already been claimed by another provider")
var ErrCannotSubmitFeedback = errors.New("feedback can only be submitted for completed bookings")
var ErrFeedbackAlreadySubmitted = errors.New("feedback already submitted")
