package netlist

// Attributes attach free-form annotations to nodes, in the spirit of
// Verilog attributes: a bare key like (* dont_touch *) or a key with a
// value like (* dont_touch = "true" *). A bare attribute is stored with an
// empty value; presence and value are queried separately.

// DontTouchAttr marks nodes optimization passes must leave alone.
const DontTouchAttr = "dont_touch"

// SetAttr sets a bare attribute on the node.
func (h Handle) SetAttr(key string) error {
	return h.SetAttrValue(key, "")
}

// SetAttrValue sets an attribute with a value, replacing any previous one.
func (h Handle) SetAttrValue(key, value string) error {
	n, err := h.resolve()
	if err != nil {
		return err
	}
	if n.attrs == nil {
		n.attrs = make(map[string]string)
	}
	n.attrs[key] = value
	return nil
}

// Attr returns the attribute's value. ok is false when the attribute is not
// set at all; a bare attribute yields ok with an empty value.
func (h Handle) Attr(key string) (value string, ok bool, err error) {
	n, err := h.resolve()
	if err != nil {
		return "", false, err
	}
	value, ok = n.attrs[key]
	return value, ok, nil
}

// HasAttr reports whether the attribute is set on the node.
func (h Handle) HasAttr(key string) (bool, error) {
	_, ok, err := h.Attr(key)
	return ok, err
}

// Attrs returns a copy of all attributes on the node.
func (h Handle) Attrs() (map[string]string, error) {
	n, err := h.resolve()
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(n.attrs))
	for k, v := range n.attrs {
		out[k] = v
	}
	return out, nil
}

// DontTouch returns the nodes marked with the dont_touch attribute, in
// registry order.
func DontTouch(nl *Netlist) []Handle {
	var out []Handle
	for _, id := range nl.reg.ids() {
		n := nl.reg.resolve(id)
		if _, ok := n.attrs[DontTouchAttr]; ok {
			out = append(out, nl.handle(id))
		}
	}
	return out
}
