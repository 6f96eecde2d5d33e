package schema

// QuestionKind is the remote Forms API question taxonomy.
type QuestionKind string

const (
	KindShortAnswer    QuestionKind = "SHORT_ANSWER"
	KindParagraph      QuestionKind = "PARAGRAPH"
	KindDropDown       QuestionKind = "DROP_DOWN"
	KindMultipleChoice QuestionKind = "MULTIPLE_CHOICE"
	KindCheckbox       QuestionKind = "CHECKBOX"
	KindDate           QuestionKind = "DATE"
	KindTime           QuestionKind = "TIME"
	KindFileUpload     QuestionKind = "FILE_UPLOAD"
)

var questionKinds = map[FieldType]QuestionKind{
	FieldText:     KindShortAnswer,
	FieldTextarea: KindParagraph,
	FieldEmail:    KindShortAnswer,
	FieldPhone:    KindShortAnswer,
	FieldNumber:   KindShortAnswer,
	FieldURL:      KindShortAnswer,
	FieldSelect:   KindDropDown,
	FieldRadio:    KindMultipleChoice,
	FieldCheckbox: KindCheckbox,
	FieldDate:     KindDate,
	FieldTime:     KindTime,
	FieldFile:     KindFileUpload,
}

// MapType returns the remote question kind for t. The second result is false
// for types the remote API cannot represent (datetime, payment, anything
// unknown).
func MapType(t FieldType) (QuestionKind, bool) {
	kind, ok := questionKinds[t]
	return kind, ok
}

// IsSupported reports whether MapType has an entry for t.
func IsSupported(t FieldType) bool {
	_, ok := questionKinds[t]
	return ok
}

// SupportedTypes returns the mapped field types in a stable order.
func SupportedTypes() []FieldType {
	return []FieldType{
		FieldText, FieldEmail, FieldPhone, FieldNumber, FieldURL,
		FieldSelect, FieldRadio, FieldCheckbox,
		FieldDate, FieldTime, FieldFile, FieldTextarea,
	}
}
