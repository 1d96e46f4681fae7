package docgen

import (
	"encoding/json"
	"fmt"
)

// name the preloaded layout library registers itself under
const layoutGlobal = "pdfMake"

// buildDriverScript emits the glue that runs after the assembled
// script: it hands the prepared payload to the recovered
// document-definition builder, pushes the definition through the
// layout library and bridges the base64 result (or any thrown error)
// back into the host.
func buildDriverScript(payload map[string]any, stats TranscriptStats, qrUrl string) (string, error) {
	payloadJson, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	statsJson, err := json.Marshal(stats)
	if err != nil {
		return "", err
	}
	qrJson, err := json.Marshal(qrUrl)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`;(function () {
	try {
		var payload = %s;
		var stats = %s;
		var definition = globalThis.%s(payload, stats, %s);
		%s.createPdf(definition).getBase64(function (data) {
			host.returnSuccess(data);
		});
	} catch (e) {
		host.returnError(e && e.message ? e.message : String(e));
	}
})();
`, payloadJson, statsJson, definitionGlobal, qrJson, layoutGlobal), nil
}
