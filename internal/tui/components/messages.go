package components

// FormSubmittedMsg is emitted when enter is pressed on a form.
type FormSubmittedMsg struct {
	Form string
}

// FormCancelledMsg is emitted when a form is dismissed with esc.
type FormCancelledMsg struct {
	Form string
}
