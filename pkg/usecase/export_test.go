package usecase

// DecodeFormValue is exported for testing
var DecodeFormValue = decodeFormValue

// BuildHomeViewBlocks is exported for testing
var BuildHomeViewBlocks = buildHomeViewBlocks

// ConfirmationMessage is exported for testing
var ConfirmationMessage = confirmationMessage
