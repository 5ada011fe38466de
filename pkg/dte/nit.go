package dte

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// Formatos de identificación tributaria salvadoreña.
// NIT: 14 dígitos (####-######-###-#) o NIT homologado al DUI (9 dígitos).
// DUI: 9 dígitos (########-#).
var (
	nitPattern = regexp.MustCompile(`^(\d{14}|\d{9})$`)
	duiPattern = regexp.MustCompile(`^\d{9}$`)
	nrcPattern = regexp.MustCompile(`^\d{1,8}$`)
)

// NormalizeID deja solo dígitos (quita guiones, puntos y espacios).
func NormalizeID(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidateNIT valida el formato del NIT (con o sin guiones).
// Acepta el NIT de 14 dígitos y el NIT homologado de 9 dígitos (igual al DUI).
func ValidateNIT(nit string) error {
	digits := NormalizeID(nit)
	if !nitPattern.MatchString(digits) {
		return fmt.Errorf("dte: NIT inválido %q: se esperan 14 o 9 dígitos, hay %d", nit, len(digits))
	}
	return nil
}

// ValidateDUI valida el formato del DUI (9 dígitos, con o sin guion).
func ValidateDUI(dui string) error {
	digits := NormalizeID(dui)
	if !duiPattern.MatchString(digits) {
		return fmt.Errorf("dte: DUI inválido %q: se esperan 9 dígitos, hay %d", dui, len(digits))
	}
	return nil
}

// ValidateNRC valida el número de registro de contribuyente (1 a 8 dígitos).
func ValidateNRC(nrc string) error {
	digits := NormalizeID(nrc)
	if !nrcPattern.MatchString(digits) {
		return fmt.Errorf("dte: NRC inválido %q", nrc)
	}
	return nil
}

// ValidateDocumentoReceptor valida un par (tipoDocumento, numDocumento) según CAT-022.
func ValidateDocumentoReceptor(tipoDocumento, numDocumento string) error {
	switch tipoDocumento {
	case DocIDNIT:
		return ValidateNIT(numDocumento)
	case DocIDDUI:
		return ValidateDUI(numDocumento)
	case DocIDOtro, DocIDPasaporte, DocIDCarnetRes:
		if strings.TrimSpace(numDocumento) == "" {
			return fmt.Errorf("dte: numDocumento vacío para tipo %s", tipoDocumento)
		}
		return nil
	default:
		return fmt.Errorf("dte: tipo de documento desconocido %q", tipoDocumento)
	}
}
