package models

// DrugInfoRequest is the form posted to /drug-info.
type DrugInfoRequest struct {
	Drug     string `form:"drug" binding:"required"`
	Question string `form:"question" binding:"required"`
}

// ReminderRequest is the form posted to /reminder-ui. Times is the raw
// comma-separated list as typed.
type ReminderRequest struct {
	Medicine  string `form:"medicine" binding:"required"`
	Dose      string `form:"dose" binding:"required"`
	Frequency string `form:"frequency" binding:"required"`
	Times     string `form:"times" binding:"required"`
}
