package widgets

import "github.com/flosch/pongo2/v6"

const assetPrefix = "/assets/fieldkit/"

const widgetsStylesheet = assetPrefix + "widgets.css"

var (
	textTemplate = pongo2.Must(pongo2.FromString(
		`<label for="{{ id }}">{{ label }}</label>` +
			`<input type="{{ input_type }}" id="{{ id }}" name="{{ name }}" value="{{ value }}"{% if placeholder %} placeholder="{{ placeholder }}"{% endif %}{% if required %} required{% endif %}>`))

	textareaTemplate = pongo2.Must(pongo2.FromString(
		`<label for="{{ id }}">{{ label }}</label>` +
			`<textarea id="{{ id }}" name="{{ name }}" rows="{{ rows }}"{% if required %} required{% endif %}>{{ value }}</textarea>`))

	checkboxTemplate = pongo2.Must(pongo2.FromString(
		`<input type="hidden" name="{{ name }}" value="0">` +
			`<input type="checkbox" id="{{ id }}" name="{{ name }}" value="1"{% if value %} checked{% endif %}>` +
			`<label for="{{ id }}">{{ label }}</label>`))

	dateTemplate = pongo2.Must(pongo2.FromString(
		`<label for="{{ id }}">{{ label }}</label>` +
			`<input type="text" id="{{ id }}" name="{{ name }}" value="{{ value }}" data-format="{{ format }}" autocomplete="off"{% if required %} required{% endif %}>`))

	selectTemplate = pongo2.Must(pongo2.FromString(
		`<label for="{{ id }}">{{ label }}</label>` +
			`<select id="{{ id }}" name="{{ name }}"{% if required %} required{% endif %}>` +
			`{% if not required %}<option value=""></option>{% endif %}` +
			`{% for option in options %}<option value="{{ option.key }}"{% if option.selected %} selected{% endif %}>{{ option.label }}</option>{% endfor %}` +
			`</select>`))

	relationTemplate = pongo2.Must(pongo2.FromString(
		`<label for="{{ id }}">{{ label }}</label>` +
			`<select id="{{ id }}" name="{{ name }}{% if multiple %}[]{% endif %}" data-ctype="{{ ctype }}"{% if multiple %} multiple{% endif %}{% if autocreate %} data-autocreate="true"{% endif %}>` +
			`{% for item in items %}<option value="{{ item.uuid }}" selected>{{ item.title }}</option>{% endfor %}` +
			`</select>`))

	matrixTemplate = pongo2.Must(pongo2.FromString(
		`<div id="{{ id }}" class="fieldkit-matrix" data-field="{{ name }}">` +
			`{% for zone in zones %}<section class="fieldkit-matrix-zone" data-zone="{{ zone.name }}">` +
			`<input type="hidden" name="{{ name }}[{{ zone.name }}]" value="{{ zone.json }}">` +
			`{% for item in zone.items %}<div class="fieldkit-matrix-item" data-uuid="{{ item.uuid }}" data-ctype="{{ item.ctype }}">{{ item.title }}</div>{% endfor %}` +
			`</section>{% endfor %}</div>`))

	structureTemplate = pongo2.Must(pongo2.FromString(
		`<fieldset id="{{ id }}" class="fieldkit-structure" data-field="{{ name }}">` +
			`<legend>{{ label }}</legend>` +
			`<textarea name="{{ name }}" hidden>{{ encoded }}</textarea>` +
			`<div class="fieldkit-structure-items">{{ children|safe }}</div>` +
			`</fieldset>`))

	connectorTemplate = pongo2.Must(pongo2.FromString(
		`<label for="{{ id }}">{{ label }}</label>` +
			`<input type="text" id="{{ id }}" name="{{ name }}" value="{{ value }}"{% if options %} list="{{ id }}-connectors"{% endif %}>` +
			`{% if options %}<datalist id="{{ id }}-connectors">{% for option in options %}<option value="{{ option.key }}">{{ option.label }}</option>{% endfor %}</datalist>{% endif %}`))

	readonlyTemplate = pongo2.Must(pongo2.FromString(
		`<span class="fieldkit-label">{{ label }}</span>` +
			`<output id="{{ id }}" name="{{ name }}">{% for item in items %}{% if not forloop.First %}, {% endif %}{{ item }}{% endfor %}</output>`))

	hiddenTemplate = pongo2.Must(pongo2.FromString(
		`<input type="hidden" id="{{ id }}" name="{{ name }}" value="{{ value }}">`))
)
