package fuel

import "testing"

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
		hasError bool
	}{
		{"12,345", 12.345, false},
		{"1,529", 1.529, false},
		{"40.4168", 40.4168, false},
		{"40,4168", 40.4168, false},
		{"-3.7038", -3.7038, false},
		{"-3,7038", -3.7038, false},
		{"7", 7.0, false},
		{"abc", 0, true},
		{"", 0, true},
		{"-", 0, true},
	}

	for _, test := range tests {
		result, err := ParseDecimal(test.input)

		if test.hasError {
			if err == nil {
				t.Errorf("ParseDecimal(%q) expected error but got none", test.input)
			}
		} else {
			if err != nil {
				t.Errorf("ParseDecimal(%q) unexpected error: %v", test.input, err)
			}
			if result != test.expected {
				t.Errorf("ParseDecimal(%q) = %f, expected %f", test.input, result, test.expected)
			}
		}
	}
}

func TestParseOptional(t *testing.T) {
	if v := parseOptional("40,4168"); v == nil || *v != 40.4168 {
		t.Errorf("parseOptional(\"40,4168\") = %v, expected 40.4168", v)
	}
	if v := parseOptional(""); v != nil {
		t.Errorf("parseOptional(\"\") = %v, expected nil", v)
	}
	if v := parseOptional("invalid"); v != nil {
		t.Errorf("parseOptional(\"invalid\") = %v, expected nil", v)
	}
}
