package bindings

import (
	"bytes"
	"fmt"
	"go/format"
	"strings"
	"text/template"

	"github.com/crytic/abiharness/descriptions"
	"github.com/crytic/abiharness/logging"
	"github.com/pkg/errors"
)

// templateFuncs are the helpers available to the binding templates.
var templateFuncs = template.FuncMap{
	"params": func(fields []boundField) string {
		params := make([]string, len(fields))
		for i, field := range fields {
			params[i] = field.Name + " " + field.Type
		}
		return strings.Join(params, ", ")
	},
	"args": func(fields []boundField) string {
		var b strings.Builder
		for _, field := range fields {
			b.WriteString(", ")
			b.WriteString(field.Name)
		}
		return b.String()
	},
	"names": func(fields []boundField) string {
		names := make([]string, len(fields))
		for i, field := range fields {
			names[i] = field.Name
		}
		return strings.Join(names, ", ")
	},
}

var (
	contractTmpl    = template.Must(template.New("contract").Funcs(templateFuncs).Parse(contractTemplate))
	errorLoaderTmpl = template.Must(template.New("errorLoader").Funcs(templateFuncs).Parse(errorLoaderTemplate))
)

// TemplateGenerator is the default Generator. It renders contract bindings from text templates and formats them
// with gofmt.
type TemplateGenerator struct {
	logger *logging.Logger
}

// NewTemplateGenerator creates a new TemplateGenerator.
func NewTemplateGenerator() *TemplateGenerator {
	return &TemplateGenerator{
		logger: logging.GlobalLogger.NewSubLogger(logging.SERVICE_KEY, logging.BINDINGS_SERVICE),
	}
}

// Generate produces the binding for the named contract within the given package. The options are currently unused.
// The errorLoader must be the canonical name of an error loader within the same package.
func (g *TemplateGenerator) Generate(contractName string, packagePath string, model *descriptions.AbiModel, options map[string]string, errorLoader string) (*GeneratedSourceUnit, error) {
	if model == nil {
		return nil, NewGenerationError(contractName, errors.New("no ABI model was provided"))
	}

	// Resolve the loader symbols and make sure the loader lives in the same package
	loader, err := parseLoaderName(errorLoader)
	if err != nil {
		return nil, NewGenerationError(contractName, err)
	}
	if loader.PackagePath != packagePath {
		return nil, NewGenerationError(contractName, errors.Errorf("error loader '%s' is not in package '%s'", errorLoader, packagePath))
	}

	// Build the template model
	contract, err := bindContract(contractName, packagePath, model, loader)
	if err != nil {
		return nil, NewGenerationError(contractName, err)
	}

	// Render and format the source
	source, err := render(contractTmpl, contract)
	if err != nil {
		return nil, NewGenerationError(contractName, err)
	}
	g.logger.Trace("Generated binding ", contract.Type, " for contract ", contractName)

	return &GeneratedSourceUnit{
		Name:        contractName,
		PackagePath: packagePath,
		Source:      source,
	}, nil
}

// render executes the template against the provided data and formats the result as Go source.
func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", errors.WithStack(err)
	}
	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		return "", fmt.Errorf("generated source for %s is not valid Go: %w", tmpl.Name(), err)
	}
	return string(formatted), nil
}

// loaderSymbols describes the Go identifiers declared by an error loader.
type loaderSymbols struct {
	PackagePath string
	Scope       string
	LoaderType  string
	DecodedType string
}

// newLoaderSymbols derives the loader symbols for the given scope and package path.
func newLoaderSymbols(scope string, packagePath string) loaderSymbols {
	scopeIdentifier := ContractIdentifier(scope)
	return loaderSymbols{
		PackagePath: packagePath,
		Scope:       scopeIdentifier,
		LoaderType:  scopeIdentifier + errorLoaderSuffix,
		DecodedType: memberName(scopeIdentifier+errorLoaderSuffix, "DecodedError"),
	}
}

// parseLoaderName resolves the loader symbols from a canonical name of the form "<packagePath>.<Scope>ErrorLoader".
func parseLoaderName(canonicalName string) (loaderSymbols, error) {
	separator := strings.LastIndex(canonicalName, ".")
	if separator <= 0 || separator == len(canonicalName)-1 {
		return loaderSymbols{}, errors.Errorf("malformed error loader name '%s'", canonicalName)
	}
	packagePath, loaderType := canonicalName[:separator], canonicalName[separator+1:]
	scope, found := strings.CutSuffix(loaderType, errorLoaderSuffix)
	if !found || scope == "" {
		return loaderSymbols{}, errors.Errorf("error loader name '%s' does not end with '%s'", canonicalName, errorLoaderSuffix)
	}
	return newLoaderSymbols(scope, packagePath), nil
}
