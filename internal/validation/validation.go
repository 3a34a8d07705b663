// Package validation содержит функции валидации входных данных.
package validation

const (
	maxIDLength       = 64
	maxCategoryLength = 32
)

// IsValidID проверяет идентификатор записи: латиница, цифры, '-' и '_', не длиннее 64 символов.
// Идентификатор должен начинаться с буквы или цифры.
func IsValidID(id string) bool {
	if id == "" || len(id) > maxIDLength {
		return false
	}

	for i := 0; i < len(id); i++ {
		ch := id[i]
		switch {
		case isAlnum(ch):
		case (ch == '-' || ch == '_') && i > 0:
		default:
			return false
		}
	}
	return true
}

// IsValidCategory проверяет значение фильтра категории: строчная латиница, цифры и '-'.
func IsValidCategory(category string) bool {
	if category == "" || len(category) > maxCategoryLength {
		return false
	}

	for i := 0; i < len(category); i++ {
		ch := category[i]
		if !(ch >= 'a' && ch <= 'z') && !(ch >= '0' && ch <= '9') && ch != '-' {
			return false
		}
	}
	return true
}

// IsValidQuantity проверяет количество товара в строке заказа.
func IsValidQuantity(qty int64) bool {
	return qty >= 1 && qty <= 999
}

func isAlnum(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9')
}
