package handlers

// Response messages shared across handlers
const (
	MsgCreateSuccessfully         = "Create successfully"
	MsgUpdateSuccessfully         = "Update successfully"
	MsgDeleteSuccessfully         = "Delete successfully"
	MsgLoginSuccessfully          = "Login successfully"
	MsgChangePasswordSuccessfully = "Change password successfully"
	MsgResetPasswordSuccessfully  = "Reset password successfully"
	MsgLogoutSuccessfully         = "Logout successfully"

	ErrMsgInvalidRequestBody = "Invalid request body"
	ErrMsgInternalServer     = "Internal server error"
	ErrMsgInvalidID          = "Invalid id"
)
