// seed_catalogs genera scripts SQL para poblar los catálogos geográficos del
// Ministerio de Hacienda (CAT-012 departamentos y CAT-013 municipios) a partir
// del XML oficial publicado con los catálogos del sistema de factura electrónica.
//
// Uso: go run ./cmd/seed_catalogs [ruta/Municipios.xml]
// Por defecto busca Municipios.xml en el directorio actual.
// Escribe: internal/infrastructure/postgres/migrations/010_seed_geografia.sql
package main

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

type catalogo struct {
	Tabla struct {
		Valores []valor `xml:"valor"`
	} `xml:"tabla"`
}

type valor struct {
	Cod    string `xml:"cod,attr"`
	Nombre string `xml:"nombre,attr"`
	Depto  struct {
		Codigo string `xml:"codigo,attr"`
		Valor  string `xml:"valor,attr"`
	} `xml:"otro"`
}

func main() {
	xmlPath := "Municipios.xml"
	if len(os.Args) > 1 {
		xmlPath = os.Args[1]
	}
	f, err := os.Open(xmlPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir XML: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	// Los catálogos del MH vienen en ISO-8859-1 (tildes y eñes).
	var cat catalogo
	dec := xml.NewDecoder(f)
	dec.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		if strings.EqualFold(charset, "ISO-8859-1") || strings.EqualFold(charset, "ISO8859-1") {
			return transform.NewReader(input, charmap.ISO8859_1.NewDecoder()), nil
		}
		return input, nil
	}
	if err := dec.Decode(&cat); err != nil {
		fmt.Fprintf(os.Stderr, "Decodificar XML: %v\n", err)
		os.Exit(1)
	}

	// Departamentos únicos: (código CAT-012, nombre)
	deptMap := make(map[string]string)
	var munis []struct{ cod, nombre, deptCode string }
	for _, v := range cat.Tabla.Valores {
		if v.Cod == "" || v.Nombre == "" || v.Depto.Codigo == "" || v.Depto.Valor == "" {
			continue
		}
		deptMap[v.Depto.Codigo] = v.Depto.Valor
		munis = append(munis, struct{ cod, nombre, deptCode string }{
			cod:      strings.TrimSpace(v.Cod),
			nombre:   strings.TrimSpace(v.Nombre),
			deptCode: strings.TrimSpace(v.Depto.Codigo),
		})
	}

	// Ordenar departamentos por código para salida estable
	var deptCodes []string
	for c := range deptMap {
		deptCodes = append(deptCodes, c)
	}
	sort.Strings(deptCodes)

	moduleRoot := findModuleRoot()
	outPath := filepath.Join(moduleRoot, "internal", "infrastructure", "postgres", "migrations", "010_seed_geografia.sql")
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Crear directorio: %v\n", err)
		os.Exit(1)
	}
	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	out.WriteString("-- Departamentos (CAT-012) y municipios (CAT-013) de El Salvador\n")
	out.WriteString("-- Generado desde Municipios.xml (catálogos MH factura electrónica)\n\n")

	out.WriteString("-- 1. Departamentos\n")
	out.WriteString("INSERT INTO mh_departamentos (codigo, nombre) VALUES\n")
	for i, c := range deptCodes {
		name := escapeSQL(deptMap[c])
		if i < len(deptCodes)-1 {
			fmt.Fprintf(out, "  ('%s', '%s'),\n", c, name)
		} else {
			fmt.Fprintf(out, "  ('%s', '%s')\n", c, name)
		}
	}
	out.WriteString("ON CONFLICT (codigo) DO UPDATE SET nombre = EXCLUDED.nombre;\n\n")

	// 2. Municipios: el código solo es único dentro de su departamento
	out.WriteString("-- 2. Municipios\n")
	for _, m := range munis {
		name := escapeSQL(m.nombre)
		fmt.Fprintf(out, "INSERT INTO mh_municipios (departamento, codigo, nombre)\n")
		fmt.Fprintf(out, "VALUES ('%s', '%s', '%s')\n", m.deptCode, m.cod, name)
		out.WriteString("ON CONFLICT (departamento, codigo) DO UPDATE SET nombre = EXCLUDED.nombre;\n")
	}

	fmt.Printf("Generado %s: %d departamentos, %d municipios\n", outPath, len(deptCodes), len(munis))
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
