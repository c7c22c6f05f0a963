package ast

import (
	"encoding/binary"
	"fmt"
	"hash"
	"reflect"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/blake2b"
)

// Fingerprint returns a stable digest of the tree rooted at v. Structurally
// equal trees produce the same fingerprint. v is usually a Statement but any
// node of this package is accepted.
func Fingerprint(v interface{}) (string, error) {
	h, _ := blake2b.New256(nil)

	err := hashVal(reflect.ValueOf(v), h)
	if err != nil {
		return "", err
	}

	return base58.Encode(h.Sum(nil)), nil
}

func writeLen(h hash.Hash, n int) error {
	return binary.Write(h, binary.LittleEndian, uint64(n))
}

func hashVal(v reflect.Value, h hash.Hash) error {
	// Loop since these can be wrapped in multiple layers of pointers
	// and interfaces.
	for v.Kind() == reflect.Interface || v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	// Nil interfaces (an unset Else, say) hash like a Noop.
	if !v.IsValid() {
		v = reflect.ValueOf(NoopStatement{})
	}

	switch k := v.Kind(); k {
	case reflect.Bool:
		var tmp uint8
		if v.Bool() {
			tmp = 1
		}
		return binary.Write(h, binary.LittleEndian, tmp)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return binary.Write(h, binary.LittleEndian, v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return binary.Write(h, binary.LittleEndian, v.Uint())
	case reflect.String:
		err := writeLen(h, v.Len())
		if err != nil {
			return err
		}

		_, err = h.Write([]byte(v.String()))
		return err
	case reflect.Slice:
		l := v.Len()

		err := writeLen(h, l)
		if err != nil {
			return err
		}

		if v.Type().Elem().Kind() == reflect.Uint8 {
			_, err = h.Write(v.Bytes())
			return err
		}

		for i := 0; i < l; i++ {
			err := hashVal(v.Index(i), h)
			if err != nil {
				return err
			}
		}
	case reflect.Struct:
		t := v.Type()

		err := hashVal(reflect.ValueOf(t.Name()), h)
		if err != nil {
			return err
		}

		for i := 0; i < v.NumField(); i++ {
			fieldType := t.Field(i)
			if fieldType.PkgPath != "" {
				// Unexported
				continue
			}

			err := hashVal(reflect.ValueOf(fieldType.Name), h)
			if err != nil {
				return err
			}

			err = hashVal(v.Field(i), h)
			if err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("unknown kind to hash: %s", k)
	}

	return nil
}
