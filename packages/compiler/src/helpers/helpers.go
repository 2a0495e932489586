// Package helpers is the fixed registry of runtime primitives that generated
// code may reference by name. Each helper carries its JavaScript definition so
// standalone modules can inline exactly the helpers they use.
package helpers

import (
	"fmt"

	"weftc-go/packages/compiler/src/util"
)

// Helper is one runtime primitive. Deps names the helpers its source
// references, so emission can close over them.
type Helper struct {
	Name   string
	Source string
	Deps   []string
}

// UnknownHelperError reports a reference to a helper that is not in the
// registry.
type UnknownHelperError struct {
	Name string
}

func (e *UnknownHelperError) Error() string {
	return fmt.Sprintf("unknown helper %q", e.Name)
}

var registry = []Helper{
	{
		Name:   "noop",
		Source: "function noop () {}",
	},
	{
		Name: "assign",
		Source: util.Dedent(`
			function assign ( target ) {
				var k, source, i = 1;
				for ( ; i < arguments.length; i += 1 ) {
					source = arguments[i];
					for ( k in source ) target[k] = source[k];
				}

				return target;
			}
		`),
	},
	{
		Name: "createElement",
		Source: util.Dedent(`
			function createElement ( name ) {
				return document.createElement( name );
			}
		`),
	},
	{
		Name: "createSvgElement",
		Source: util.Dedent(`
			function createSvgElement ( name ) {
				return document.createElementNS( 'http://www.w3.org/2000/svg', name );
			}
		`),
	},
	{
		Name: "createText",
		Source: util.Dedent(`
			function createText ( data ) {
				return document.createTextNode( data );
			}
		`),
	},
	{
		Name: "createComment",
		Source: util.Dedent(`
			function createComment () {
				return document.createComment( '' );
			}
		`),
	},
	{
		Name: "appendNode",
		Source: util.Dedent(`
			function appendNode ( node, target ) {
				target.appendChild( node );
			}
		`),
	},
	{
		Name: "insertNode",
		Source: util.Dedent(`
			function insertNode ( node, target, anchor ) {
				target.insertBefore( node, anchor );
			}
		`),
	},
	{
		Name: "detachNode",
		Source: util.Dedent(`
			function detachNode ( node ) {
				node.parentNode.removeChild( node );
			}
		`),
	},
	{
		Name: "detachBetween",
		Deps: []string{"detachNode"},
		Source: util.Dedent(`
			function detachBetween ( before, after ) {
				while ( before.nextSibling && before.nextSibling !== after ) {
					detachNode( before.nextSibling );
				}
			}
		`),
	},
	{
		Name: "destroyEach",
		Source: util.Dedent(`
			function destroyEach ( iterations ) {
				for ( var i = 0; i < iterations.length; i += 1 ) {
					if ( iterations[i] ) {
						iterations[i].unmount();
						iterations[i].destroy();
					}
				}
			}
		`),
	},
	{
		Name: "setAttribute",
		Source: util.Dedent(`
			function setAttribute ( node, attribute, value ) {
				node.setAttribute( attribute, value );
			}
		`),
	},
	{
		Name: "addListener",
		Source: util.Dedent(`
			function addListener ( node, event, handler ) {
				node.addEventListener( event, handler, false );
			}
		`),
	},
	{
		Name: "removeListener",
		Source: util.Dedent(`
			function removeListener ( node, event, handler ) {
				node.removeEventListener( event, handler, false );
			}
		`),
	},
	{
		Name: "differs",
		Source: util.Dedent(`
			function differs ( a, b ) {
				return ( a !== b ) || ( a && typeof a === 'object' ) || ( typeof a === 'function' );
			}
		`),
	},
}

var byName = func() map[string]Helper {
	m := make(map[string]Helper, len(registry))
	for _, h := range registry {
		m[h.Name] = h
	}
	return m
}()

// Registry returns every helper in its fixed order.
func Registry() []Helper {
	out := make([]Helper, len(registry))
	copy(out, registry)
	return out
}

// Names returns every helper name in registry order; units reserve these so
// generated locals never shadow a helper.
func Names() []string {
	names := make([]string, len(registry))
	for i, h := range registry {
		names[i] = h.Name
	}
	return names
}

// Lookup returns the helper registered under name.
func Lookup(name string) (Helper, error) {
	h, ok := byName[name]
	if !ok {
		return Helper{}, &UnknownHelperError{Name: name}
	}
	return h, nil
}

// Expand resolves names into helpers closed over their dependencies.
// Dependencies precede their dependents, order otherwise follows first use
// and duplicates collapse.
func Expand(names []string) ([]Helper, error) {
	var out []Helper
	seen := make(map[string]bool)

	var visit func(name string) error
	visit = func(name string) error {
		if seen[name] {
			return nil
		}
		h, err := Lookup(name)
		if err != nil {
			return err
		}
		seen[name] = true
		for _, dep := range h.Deps {
			if err := visit(dep); err != nil {
				return err
			}
		}
		out = append(out, h)
		return nil
	}

	for _, name := range names {
		if err := visit(name); err != nil {
			return nil, err
		}
	}
	return out, nil
}
