package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapType(t *testing.T) {
	tests := map[FieldType]QuestionKind{
		FieldText:     KindShortAnswer,
		FieldEmail:    KindShortAnswer,
		FieldPhone:    KindShortAnswer,
		FieldNumber:   KindShortAnswer,
		FieldURL:      KindShortAnswer,
		FieldTextarea: KindParagraph,
		FieldSelect:   KindDropDown,
		FieldRadio:    KindMultipleChoice,
		FieldCheckbox: KindCheckbox,
		FieldDate:     KindDate,
		FieldTime:     KindTime,
		FieldFile:     KindFileUpload,
	}
	for in, want := range tests {
		got, ok := MapType(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	assert.Len(t, SupportedTypes(), len(tests))

	for _, unsupported := range []FieldType{FieldDateTime, FieldPayment, "", "TEXT"} {
		_, ok := MapType(unsupported)
		assert.False(t, ok, unsupported)
	}
}

func TestToSnakeCase(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Full Name", "full_name"},
		{"firstName", "first_name"},
		{"HTTPServer port", "http_server_port"},
		{"  What's your e-mail?  ", "what_s_your_e_mail"},
		{"field1Name", "field1_name"},
		{"already_snake", "already_snake"},
		{"नाम", "नाम"},
		{"!!!", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ToSnakeCase(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, ToSnakeCase(got))
		})
	}
}
