package constants

const (
	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the optional publishing time of a card (HH:MM)
	TimeFormat = "15:04"

	// TimestampFormat is the ISO-8601 UTC timestamp with millisecond precision used for createdAt
	TimestampFormat = "2006-01-02T15:04:05.000Z07:00"

	// BackupTimestampFormat names backup files
	BackupTimestampFormat = "20060102-150405"
)

// MonthNames are the Portuguese month names shown by the calendar views.
var MonthNames = [12]string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

// WeekdayNames are the Portuguese short weekday names, Monday first.
var WeekdayNames = [7]string{"Seg", "Ter", "Qua", "Qui", "Sex", "Sáb", "Dom"}
