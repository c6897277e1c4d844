package builtins

import "github.com/pawsong/js-interp/runtime"

// RegisterAll installs every builtin into the realm. Order matters:
// Function and Object bootstrap each other's prototypes, and the global
// object only inherits from Object.prototype once that exists.
func RegisterAll(r *runtime.Realm) {
	registerFunction(r)
	registerObject(r)
	r.GlobalObject.Proto = r.ObjectProto
	r.FunctionProto.Proto = r.ObjectProto
	registerArray(r)
	registerNumber(r)
	registerString(r)
	registerBoolean(r)
	registerDate(r)
	registerMath(r)
	registerRegExp(r)
	registerJSON(r)
	registerError(r)
	registerGlobals(r)
}
