package builtins

// PolyfillSource is prepended to every program with its node positions
// stripped, so the step counter never reports startup code. Methods that
// must invoke script callbacks live here instead of in native Go.
const PolyfillSource = `
Object.defineProperty(Array.prototype, 'every', {configurable: true, writable: true, value:
  function(callbackfn, thisArg) {
    if (!this || callbackfn === undefined) throw TypeError();
    var t, k = 0, o = Object(this), len = o.length >>> 0;
    if (typeof callbackfn !== 'function') throw TypeError();
    if (arguments.length > 1) t = thisArg;
    while (k < len) {
      if (k in o && !callbackfn.call(t, o[k], k, o)) return false;
      k++;
    }
    return true;
  }
});

Object.defineProperty(Array.prototype, 'filter', {configurable: true, writable: true, value:
  function(fun, thisArg) {
    if (this === void 0 || this === null || typeof fun !== 'function') throw TypeError();
    var o = Object(this), len = o.length >>> 0, res = [];
    for (var i = 0; i < len; i++) {
      if (i in o) {
        var val = o[i];
        if (fun.call(thisArg, val, i, o)) res.push(val);
      }
    }
    return res;
  }
});

Object.defineProperty(Array.prototype, 'forEach', {configurable: true, writable: true, value:
  function(callback, thisArg) {
    if (!this || typeof callback !== 'function') throw TypeError();
    var t, o = Object(this), len = o.length >>> 0;
    if (arguments.length > 1) t = thisArg;
    for (var k = 0; k < len; k++) {
      if (k in o) callback.call(t, o[k], k, o);
    }
  }
});

Object.defineProperty(Array.prototype, 'map', {configurable: true, writable: true, value:
  function(callback, thisArg) {
    if (!this || typeof callback !== 'function') throw TypeError();
    var t, o = Object(this), len = o.length >>> 0, a = new Array(len);
    if (arguments.length > 1) t = thisArg;
    for (var k = 0; k < len; k++) {
      if (k in o) a[k] = callback.call(t, o[k], k, o);
    }
    return a;
  }
});

Object.defineProperty(Array.prototype, 'reduce', {configurable: true, writable: true, value:
  function(callback, opt_initialValue) {
    if (!this || typeof callback !== 'function') throw TypeError();
    var o = Object(this), len = o.length >>> 0, k = 0, value;
    if (arguments.length > 1) {
      value = opt_initialValue;
    } else {
      while (k < len && !(k in o)) k++;
      if (k >= len) throw TypeError('Reduce of empty array with no initial value');
      value = o[k++];
    }
    for (; k < len; k++) {
      if (k in o) value = callback(value, o[k], k, o);
    }
    return value;
  }
});

Object.defineProperty(Array.prototype, 'reduceRight', {configurable: true, writable: true, value:
  function(callback, opt_initialValue) {
    if (!this || typeof callback !== 'function') throw TypeError();
    var o = Object(this), len = o.length >>> 0, k = len - 1, value;
    if (arguments.length > 1) {
      value = opt_initialValue;
    } else {
      while (k >= 0 && !(k in o)) k--;
      if (k < 0) throw TypeError('Reduce of empty array with no initial value');
      value = o[k--];
    }
    for (; k >= 0; k--) {
      if (k in o) value = callback(value, o[k], k, o);
    }
    return value;
  }
});

Object.defineProperty(Array.prototype, 'some', {configurable: true, writable: true, value:
  function(fun, thisArg) {
    if (!this || typeof fun !== 'function') throw TypeError();
    var o = Object(this), len = o.length >>> 0;
    for (var i = 0; i < len; i++) {
      if (i in o && fun.call(thisArg, o[i], i, o)) return true;
    }
    return false;
  }
});

Object.defineProperty(Array.prototype, 'sort', {configurable: true, writable: true, value:
  function(opt_comp) {
    if (typeof opt_comp !== 'function') {
      opt_comp = function(a, b) {
        return String(a) < String(b) ? -1 : (String(a) > String(b) ? 1 : 0);
      };
    }
    for (var i = 0; i < this.length; i++) {
      var changes = 0;
      for (var j = 0; j < this.length - i - 1; j++) {
        if (opt_comp(this[j], this[j + 1]) > 0) {
          var swap = this[j];
          this[j] = this[j + 1];
          this[j + 1] = swap;
          changes++;
        }
      }
      if (!changes) break;
    }
    return this;
  }
});

Object.defineProperty(Array.prototype, 'toLocaleString', {configurable: true, writable: true, value:
  function() {
    var o = Object(this), cells = [];
    for (var i = 0; i < o.length; i++) {
      var e = o[i];
      cells[i] = (e === null || e === undefined) ? '' : e.toLocaleString();
    }
    return cells.join(',');
  }
});

Object.defineProperty(Object, 'defineProperties', {configurable: true, writable: true, value:
  function(obj, props) {
    var keys = Object.keys(props);
    for (var i = 0; i < keys.length; i++) {
      Object.defineProperty(obj, keys[i], props[keys[i]]);
    }
    return obj;
  }
});

(function() {
  var createWithoutProperties = Object.create;
  Object.defineProperty(Object, 'create', {configurable: true, writable: true, value:
    function(proto, props) {
      var obj = createWithoutProperties(proto);
      if (props !== undefined) Object.defineProperties(obj, props);
      return obj;
    }
  });
})();
`
