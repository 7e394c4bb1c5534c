package templates

// pageScript drives the form over XHR. Checkboxes are always sent as
// "true"/"false" so an unticked box is distinguishable from an absent field.
const pageScript = `
(function () {
  var columns = ["LocationName", "Address", "City", "State", "Zip", "ContactPerson", "Phone", "Email"];
  var tbody = document.querySelector("#records tbody");
  var message = document.getElementById("message");

  function addRow(rec) {
    var tr = document.createElement("tr");
    tr.dataset.id = rec.id;
    columns.forEach(function (key) {
      var td = document.createElement("td");
      td.textContent = rec[key] || "";
      tr.appendChild(td);
    });
    tbody.appendChild(tr);
  }

  function clearErrors() {
    document.querySelectorAll("[data-error-for]").forEach(function (el) { el.textContent = ""; });
  }

  function showErrors(errors) {
    if (!errors || typeof errors !== "object") return;
    Object.keys(errors).forEach(function (field) {
      var el = document.querySelector('[data-error-for="' + field + '"]');
      if (el) el.textContent = errors[field].join(" ");
    });
  }

  JSON.parse(document.getElementById("initial-data").textContent).forEach(addRow);

  var form = document.getElementById("customer-form");
  form.addEventListener("submit", function (ev) {
    ev.preventDefault();
    clearErrors();
    var body = new URLSearchParams();
    Array.prototype.forEach.call(form.elements, function (el) {
      if (!el.name) return;
      if (el.type === "checkbox") {
        body.append(el.name, el.checked ? "true" : "false");
      } else {
        body.append(el.name, el.value);
      }
    });
    fetch("/", {
      method: "POST",
      headers: {"X-Requested-With": "XMLHttpRequest", "Content-Type": "application/x-www-form-urlencoded"},
      body: body
    }).then(function (resp) { return resp.json(); }).then(function (data) {
      message.textContent = data.message || "";
      if (data.success) {
        addRow(data.new_record);
        form.reset();
      } else {
        showErrors(data.errors);
      }
    }).catch(function () { message.textContent = "Request failed."; });
  });

  var importForm = document.getElementById("import-form");
  importForm.addEventListener("submit", function (ev) {
    ev.preventDefault();
    fetch("/import_csv/", {method: "POST", body: new FormData(importForm)})
      .then(function (resp) { return resp.json(); })
      .then(function (data) {
        message.textContent = data.message || "";
        if (data.success) {
          (data.new_records || []).forEach(addRow);
          importForm.reset();
        }
      }).catch(function () { message.textContent = "Import failed."; });
  });
})();
`
